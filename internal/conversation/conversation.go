package conversation

import (
	"context"
	"time"

	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

// Store is the ordered message log of one session. It does not enforce
// user/assistant alternation; two user messages in a row are accepted.
type Store struct {
	backend   chatModel.MessageStore
	sessionId string
	now       func() time.Time
	logger    *logger_i.Logger
}

type Option func(*Store)

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(backend chatModel.MessageStore, sessionId string, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		sessionId: sessionId,
		now:       time.Now,
		logger:    logger_i.NewLogger("Conversation").With("session", sessionId),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SessionId() string {
	return s.sessionId
}

func (s *Store) AppendUser(ctx context.Context, content string) (chatModel.Message, error) {
	return s.append(ctx, chatModel.RoleUser, content)
}

func (s *Store) AppendAssistant(ctx context.Context, content string) (chatModel.Message, error) {
	return s.append(ctx, chatModel.RoleAssistant, content)
}

func (s *Store) append(ctx context.Context, role chatModel.Role, content string) (chatModel.Message, error) {
	msg := chatModel.Message{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
	if err := s.backend.Append(ctx, s.sessionId, msg); err != nil {
		s.logger.Error("append failed", "role", role, "error", err)
		return chatModel.Message{}, err
	}
	return msg, nil
}

// Clear empties the log. Calling it on an empty log is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx, s.sessionId)
}

// SnapshotForRequest returns the messages in insertion order with timestamps dropped.
func (s *Store) SnapshotForRequest(ctx context.Context) ([]chatModel.HistoryEntry, error) {
	msgs, err := s.backend.List(ctx, s.sessionId)
	if err != nil {
		return nil, err
	}
	history := make([]chatModel.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, chatModel.HistoryEntry{Role: m.Role, Content: m.Content})
	}
	return history, nil
}

func (s *Store) Messages(ctx context.Context) ([]chatModel.Message, error) {
	return s.backend.List(ctx, s.sessionId)
}

func (s *Store) Len(ctx context.Context) (int, error) {
	msgs, err := s.backend.List(ctx, s.sessionId)
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}
