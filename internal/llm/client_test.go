package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChat_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "test-model" {
			t.Errorf("model = %v", req["model"])
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Hello there"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	reply, err := client.Chat(context.Background(), []Message{
		{Role: "user", Content: "Hi"},
	}, ChatParams{Temperature: 0.7})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Hello there" {
		t.Errorf("Chat() = %q, want Hello there", reply)
	}
}

func TestChat_ImagesBecomeContentParts(t *testing.T) {
	var captured struct {
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", "m")
	_, err := client.Chat(context.Background(), []Message{
		{Role: "user", Content: "What is in these frames?", Images: [][]byte{{0xFF, 0xD8}}},
	}, ChatParams{})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if len(captured.Messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(captured.Messages))
	}
	var parts []map[string]any
	if err := json.Unmarshal(captured.Messages[0].Content, &parts); err != nil {
		t.Fatalf("content is not a parts array: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("content has %d parts, want text + image", len(parts))
	}
	if parts[0]["type"] != "text" || parts[1]["type"] != "image_url" {
		t.Errorf("part types = %v, %v", parts[0]["type"], parts[1]["type"])
	}
	imageURL, _ := parts[1]["image_url"].(map[string]any)
	url, _ := imageURL["url"].(string)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("image url = %q, want base64 data URL", url)
	}
}

func TestChat_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", "m")
	if _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, ChatParams{}); err == nil {
		t.Error("Chat() expected error for non-200 response")
	}
}

func TestChat_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", "m")
	if _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, ChatParams{}); err == nil {
		t.Error("Chat() expected error for empty choices")
	}
}

func TestStreamChat_CollectsChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
			`data: {"choices":[{"delta":{"content":"lo"}}]}`,
			`data: [DONE]`,
		}
		for _, c := range chunks {
			_, _ = w.Write([]byte(c + "\n\n"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", "m")
	var got strings.Builder
	err := client.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}}, ChatParams{},
		func(chunk string) error {
			got.WriteString(chunk)
			return nil
		})
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}
	if got.String() != "Hello" {
		t.Errorf("streamed %q, want Hello", got.String())
	}
}
