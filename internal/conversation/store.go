// Package conversation holds the client side of a support chat: the ordered
// message history of one session and the single request it may have in
// flight.
package conversation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"clairon-backend/internal/logging"
	"clairon-backend/internal/models"
)

const (
	Greeting = "Hello! I'm here to support you on your wellness journey. How can I help you today? 💙"

	// FallbackConnection replaces the assistant reply when the chat proxy
	// cannot be reached.
	FallbackConnection = "I apologize, but I'm having trouble connecting right now. Please try again in a moment, and remember - you're not alone in this. 🤗"

	// FallbackEmpty replaces a reply that settled with no text.
	FallbackEmpty = "I'm here to listen and support you. Could you tell me more about what's on your mind?"
)

// Sender delivers the full conversation to the chat proxy and returns the
// assistant's reply text.
type Sender interface {
	Send(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// Store is safe for concurrent use. The lock is never held while a request
// is in flight.
type Store struct {
	mu       sync.Mutex
	messages []models.Message
	busy     bool

	sender Sender
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logging.OrDiscard(logger) }
}

// New returns a store seeded with the assistant greeting.
func New(sender Sender, opts ...Option) *Store {
	s := &Store{
		sender: sender,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.messages = []models.Message{s.greeting()}
	return s
}

func (s *Store) greeting() models.Message {
	return models.Message{Role: models.RoleAssistant, Content: Greeting, Timestamp: s.now()}
}

// Submit appends text as a user message, sends the conversation and appends
// the assistant reply. It returns the reply and true, or a zero Message and
// false when text is blank or another submit is still in flight. Dropped
// submits are never queued.
func (s *Store) Submit(ctx context.Context, text string) (reply models.Message, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, false
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return models.Message{}, false
	}
	s.messages = append(s.messages, models.Message{Role: models.RoleUser, Content: text, Timestamp: s.now()})
	s.busy = true
	outbound := make([]models.ChatMessage, len(s.messages))
	for i, m := range s.messages {
		outbound[i] = m.Wire()
	}
	s.mu.Unlock()

	// Settle exactly once, even if the sender panics.
	content := FallbackConnection
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("support sender panicked", "panic", rec)
			content = FallbackConnection
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		reply = models.Message{Role: models.RoleAssistant, Content: content, Timestamp: s.now()}
		s.messages = append(s.messages, reply)
		s.busy = false
		ok = true
	}()

	got, err := s.sender.Send(ctx, outbound)
	switch {
	case err != nil:
		s.logger.Error("support request failed", "error", err)
	case got == "":
		content = FallbackEmpty
	default:
		content = got
	}
	return reply, ok
}

// Reset discards the history and reseeds a fresh greeting. It refuses, and
// returns false, while a submit is in flight.
func (s *Store) Reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.messages = []models.Message{s.greeting()}
	return true
}

// Messages returns a copy of the history in order.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}
