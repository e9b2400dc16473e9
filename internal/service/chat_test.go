package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"broll/internal/catalog"
	"broll/internal/llm"
	"broll/internal/search"
	"broll/internal/service"
	"broll/internal/service/mocks"
)

func strptr(s string) *string { return &s }

func hitFor(id int64, name, desc string) search.Hit {
	return search.Hit{Entry: &catalog.Entry{ID: id, Name: name, SceneDescription: strptr(desc)}}
}

func TestSend_GroundsAnswerInSearchResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	chatter := mocks.NewMockChatter(ctrl)
	ctx := context.Background()

	searcher.EXPECT().Search(ctx, "sunset clips", search.ModeHybrid, 5).Return([]search.Hit{
		hitFor(1, "DJI_0001.mp4", "Sunset over the bay"),
	}, nil)

	var sent []llm.Message
	chatter.EXPECT().Chat(ctx, gomock.Any(), llm.ChatParams{Temperature: 0.7}).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			sent = messages
			return "You have one sunset clip: DJI_0001.mp4", nil
		})

	svc := service.NewChatService(searcher, chatter)
	reply, err := svc.Send(ctx, "", "sunset clips")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply.SessionID == "" {
		t.Error("Send() did not assign a session id")
	}
	if reply.Answer != "You have one sunset clip: DJI_0001.mp4" {
		t.Errorf("Answer = %q", reply.Answer)
	}
	if len(reply.Clips) != 1 || reply.Clips[0].ID != 1 {
		t.Errorf("Clips = %v", reply.Clips)
	}

	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want system + user", len(sent))
	}
	if sent[0].Role != "system" {
		t.Errorf("first message role = %q, want system", sent[0].Role)
	}
	if !strings.Contains(sent[1].Content, "DJI_0001.mp4") {
		t.Errorf("user message missing clip context: %q", sent[1].Content)
	}
	if !strings.Contains(sent[1].Content, "sunset clips") {
		t.Errorf("user message missing original question: %q", sent[1].Content)
	}
}

func TestSend_FiltersErrorEntriesFromContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	chatter := mocks.NewMockChatter(ctrl)
	ctx := context.Background()

	searcher.EXPECT().Search(ctx, gomock.Any(), search.ModeHybrid, 5).Return([]search.Hit{
		hitFor(1, "good.mp4", "A forest trail"),
		hitFor(2, "broken.mp4", "ERROR: Could not process video - file may be corrupted or incomplete"),
	}, nil)
	chatter.EXPECT().Chat(ctx, gomock.Any(), gomock.Any()).Return("answer", nil)

	svc := service.NewChatService(searcher, chatter)
	reply, err := svc.Send(ctx, "", "forest")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(reply.Clips) != 1 || reply.Clips[0].Name != "good.mp4" {
		t.Errorf("Clips = %v, want broken entry filtered out", reply.Clips)
	}
}

func TestSend_DegradesWhenLLMUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	chatter := mocks.NewMockChatter(ctrl)
	ctx := context.Background()

	searcher.EXPECT().Search(ctx, gomock.Any(), search.ModeHybrid, 5).Return(nil, nil)
	chatter.EXPECT().Chat(ctx, gomock.Any(), gomock.Any()).Return("", errors.New("connection refused"))

	svc := service.NewChatService(searcher, chatter)
	reply, err := svc.Send(ctx, "", "anything")
	if err != nil {
		t.Fatalf("Send() error = %v, want degraded reply instead", err)
	}
	if !strings.Contains(reply.Answer, "try again") {
		t.Errorf("Answer = %q, want apology", reply.Answer)
	}
}

func TestSend_SearchFailureStillAnswers(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	chatter := mocks.NewMockChatter(ctrl)
	ctx := context.Background()

	searcher.EXPECT().Search(ctx, gomock.Any(), search.ModeHybrid, 5).Return(nil, errors.New("fts corrupt"))
	chatter.EXPECT().Chat(ctx, gomock.Any(), gomock.Any()).Return("no context answer", nil)

	svc := service.NewChatService(searcher, chatter)
	reply, err := svc.Send(ctx, "", "question")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply.Answer != "no context answer" {
		t.Errorf("Answer = %q", reply.Answer)
	}
	if len(reply.Clips) != 0 {
		t.Errorf("Clips = %v, want none", reply.Clips)
	}
}

func TestSend_EmptyMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := service.NewChatService(mocks.NewMockSearcher(ctrl), mocks.NewMockChatter(ctrl))

	if _, err := svc.Send(context.Background(), "", "  "); err == nil {
		t.Error("Send() expected error for empty message")
	}
}

func TestSend_HistoryReplayedAndTrimmed(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	chatter := mocks.NewMockChatter(ctrl)
	ctx := context.Background()

	searcher.EXPECT().Search(ctx, gomock.Any(), search.ModeHybrid, 5).Return(nil, nil).AnyTimes()

	var lastLen int
	chatter.EXPECT().Chat(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			lastLen = len(messages)
			return "ok", nil
		}).AnyTimes()

	svc := service.NewChatService(searcher, chatter)

	sessionID := ""
	// 15 turns accumulate 30 history messages; replay caps at 20.
	for i := 0; i < 15; i++ {
		reply, err := svc.Send(ctx, sessionID, fmt.Sprintf("turn %d", i))
		if err != nil {
			t.Fatalf("Send() turn %d error = %v", i, err)
		}
		sessionID = reply.SessionID
	}

	// Final turn: system + 20 trimmed history + current user message.
	if lastLen != 22 {
		t.Errorf("last request had %d messages, want 22", lastLen)
	}
}

func TestReset_DropsHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	chatter := mocks.NewMockChatter(ctrl)
	ctx := context.Background()

	searcher.EXPECT().Search(ctx, gomock.Any(), search.ModeHybrid, 5).Return(nil, nil).AnyTimes()

	var lastLen int
	chatter.EXPECT().Chat(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			lastLen = len(messages)
			return "ok", nil
		}).AnyTimes()

	svc := service.NewChatService(searcher, chatter)
	reply, err := svc.Send(ctx, "", "first")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	svc.Reset(reply.SessionID)

	if _, err := svc.Send(ctx, reply.SessionID, "after reset"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if lastLen != 2 {
		t.Errorf("request after reset had %d messages, want system + user only", lastLen)
	}
}
