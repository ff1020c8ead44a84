package session

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/akolanti/DoubtSolver/internal/conversation"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/formatter"
	"github.com/akolanti/DoubtSolver/internal/llm"
	"github.com/akolanti/DoubtSolver/internal/loader"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

var (
	ErrBlankQuestion  = errors.New("question is blank")
	ErrNoDocument     = errors.New("no document loaded")
	ErrAwaitingReply  = errors.New("a reply is still outstanding")
	ErrLoadInProgress = errors.New("a document load is already in progress")
	ErrNothingPending = errors.New("nothing pending")
)

// DocumentLoader is satisfied by *loader.Loader.
type DocumentLoader interface {
	Load(ctx context.Context, src loader.Source) (loader.Extraction, error)
}

/*
Session is the application state of one user: the active document, the conversation,
and the two in-flight flags (loading, awaiting reply).

At most one load and one generation call are outstanding at any time. Both are split
in two halves so a front end can accept the request synchronously and finish it on a
worker:

	BeginLoad      -> RunLoad
	SubmitQuestion -> ResolveReply

mu guards the fields below it. It is never held while the provider is called, so a
load or a clear can proceed while a reply is outstanding.
*/
type Session struct {
	conversation *conversation.Store
	provider     llm.Provider
	loader       DocumentLoader
	now          func() time.Time
	genTimeout   time.Duration
	logger       *logger_i.Logger

	mu            sync.Mutex
	document      chatModel.Document
	isLoading     bool
	pendingLoad   *loader.Source
	lastError     string
	awaitingReply bool
	pendingAsk    *chatModel.GenerationRequest
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithGenerationTimeout bounds a single provider call. Zero means no bound.
func WithGenerationTimeout(d time.Duration) Option {
	return func(s *Session) { s.genTimeout = d }
}

func New(conv *conversation.Store, provider llm.Provider, docLoader DocumentLoader, opts ...Option) *Session {
	s := &Session{
		conversation: conv,
		provider:     provider,
		loader:       docLoader,
		now:          time.Now,
		logger:       logger_i.NewLogger("Session").With("session", conv.SessionId()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Id() string {
	return s.conversation.SessionId()
}

// MessageView is a conversation message as displayed. Assistant messages carry their
// formatted blocks.
type MessageView struct {
	chatModel.Message
	Blocks []formatter.Block `json:"blocks,omitempty"`
}

type State struct {
	SessionId     string                  `json:"session_id"`
	Document      chatModel.DocumentState `json:"document"`
	AwaitingReply bool                    `json:"awaiting_reply"`
	Messages      []MessageView           `json:"messages"`
}

func (s *Session) DocumentState() chatModel.DocumentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentStateLocked()
}

func (s *Session) documentStateLocked() chatModel.DocumentState {
	state := chatModel.DocumentState{
		Document:   s.document,
		Characters: utf8.RuneCountInString(s.document.Text),
		IsLoading:  s.isLoading,
		LastError:  s.lastError,
	}
	if s.pendingLoad != nil {
		state.LoadingName = s.pendingLoad.Name
	}
	return state
}

func (s *Session) AwaitingReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingReply
}

// Snapshot is a read-only view for display.
func (s *Session) Snapshot(ctx context.Context) (State, error) {
	s.mu.Lock()
	state := State{
		SessionId:     s.Id(),
		Document:      s.documentStateLocked(),
		AwaitingReply: s.awaitingReply,
	}
	s.mu.Unlock()

	msgs, err := s.conversation.Messages(ctx)
	if err != nil {
		return State{}, err
	}
	state.Messages = make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		view := MessageView{Message: m}
		if m.Role == chatModel.RoleAssistant {
			view.Blocks = formatter.Format(m.Content)
		}
		state.Messages = append(state.Messages, view)
	}
	return state, nil
}

// ClearConversation empties the log at once. An outstanding reply is not cancelled and
// still lands in the emptied log.
func (s *Session) ClearConversation(ctx context.Context) error {
	if err := s.conversation.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("Conversation cleared")
	return nil
}
