package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat.go -package=mocks broll/internal/service Searcher,Chatter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"broll/internal/catalog"
	"broll/internal/contextutil"
	"broll/internal/llm"
	"broll/internal/search"
)

const chatSystemPrompt = `You are a helpful assistant for a videographer's b-roll footage library.
You answer questions about the clips in the catalog and help find footage for editing projects.

When clip context is provided, ground your answers in it: reference clips by file name,
mention durations and locations when relevant, and say so plainly when the catalog has
nothing matching. Keep answers short and practical.`

const (
	// historyLimit caps how many prior messages are replayed per turn.
	historyLimit = 20
	// contextClips is how many search hits are folded into the prompt.
	contextClips = 5

	chatTemperature = 0.7
)

const degradedReply = "Sorry, I couldn't reach the language model just now. Please try again in a moment."

// Searcher is the search surface the chat service uses for context.
type Searcher interface {
	Search(ctx context.Context, query string, mode search.Mode, limit int) ([]search.Hit, error)
}

// Chatter is the completion surface the chat service talks to.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Reply is one chat turn's outcome.
type Reply struct {
	SessionID string
	Answer    string
	// Clips are the catalog entries surfaced as context for this turn,
	// so the caller can show what the answer was grounded in.
	Clips []*catalog.Entry
}

// ChatService runs search-augmented conversations over the catalog.
// Each user turn triggers a hybrid search; the top hits are folded into
// the prompt so the model answers about real clips. Sessions live in
// memory only.
type ChatService struct {
	engine Searcher
	llm    Chatter

	mu       sync.Mutex
	sessions map[string][]llm.Message
}

// NewChatService creates a chat service over a search engine and a chat
// completion client.
func NewChatService(engine Searcher, chatter Chatter) *ChatService {
	return &ChatService{
		engine:   engine,
		llm:      chatter,
		sessions: make(map[string][]llm.Message),
	}
}

// Send handles one user turn. An empty sessionID starts a new session;
// the returned Reply always carries the session id to continue with.
// LLM failure degrades to an apology rather than an error so the
// conversation survives a flaky backend; search failure just means no
// clip context this turn.
func (s *ChatService) Send(ctx context.Context, sessionID, message string) (*Reply, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("message must not be empty")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var clips []*catalog.Entry
	hits, err := s.engine.Search(ctx, message, search.ModeHybrid, contextClips)
	if err != nil {
		logger.WarnContext(ctx, "context search failed", "error", err)
	}
	for _, h := range hits {
		if h.Entry.SceneDescription != nil && strings.HasPrefix(*h.Entry.SceneDescription, "ERROR:") {
			continue
		}
		clips = append(clips, h.Entry)
	}

	history := s.history(sessionID)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: chatSystemPrompt})
	messages = append(messages, history...)

	userContent := message
	if len(clips) > 0 {
		userContent = "Relevant clips from the catalog:\n\n" + formatClipContext(clips) +
			"\n\nQuestion: " + message
	}
	messages = append(messages, llm.Message{Role: "user", Content: userContent})

	answer, err := s.llm.Chat(ctx, messages, llm.ChatParams{Temperature: chatTemperature})
	if err != nil {
		logger.ErrorContext(ctx, "chat completion failed", "error", err)
		answer = degradedReply
	}

	s.append(sessionID,
		llm.Message{Role: "user", Content: message},
		llm.Message{Role: "assistant", Content: answer},
	)

	return &Reply{SessionID: sessionID, Answer: answer, Clips: clips}, nil
}

// Reset drops a session's history.
func (s *ChatService) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *ChatService) history(sessionID string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.sessions[sessionID]
	if len(h) > historyLimit {
		h = h[len(h)-historyLimit:]
	}
	out := make([]llm.Message, len(h))
	copy(out, h)
	return out
}

func (s *ChatService) append(sessionID string, msgs ...llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], msgs...)
}

func formatClipContext(clips []*catalog.Entry) string {
	var b strings.Builder
	for i, c := range clips {
		fmt.Fprintf(&b, "%d. %s", i+1, c.Name)
		if c.DurationSeconds != nil {
			fmt.Fprintf(&b, " (%.1fs)", *c.DurationSeconds)
		}
		if c.SceneDescription != nil && *c.SceneDescription != "" {
			fmt.Fprintf(&b, ": %s", *c.SceneDescription)
		}
		if len(c.Tags) > 0 {
			fmt.Fprintf(&b, " [tags: %s]", strings.Join(c.Tags, ", "))
		}
		if c.LocationName != "" {
			fmt.Fprintf(&b, " [location: %s]", c.LocationName)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
