package session

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/formatter"
	"github.com/akolanti/DoubtSolver/internal/metrics"
	"github.com/akolanti/DoubtSolver/internal/prompt"
)

type Outcome string

const (
	OutcomeReply  Outcome = "reply"
	OutcomeEmpty  Outcome = "empty"
	OutcomeFailed Outcome = "error"
)

// Reply is the assistant message appended for one question.
type Reply struct {
	Message chatModel.Message
	Blocks  []formatter.Block
	Outcome Outcome
	// Cause is set when Outcome is OutcomeFailed.
	Cause error
}

// SubmitQuestion gates and records a question. When it returns nil exactly one
// generation call is pending and must be finished with ResolveReply.
func (s *Session) SubmitQuestion(ctx context.Context, question string) (chatModel.Message, error) {
	if strings.TrimSpace(question) == "" {
		return chatModel.Message{}, ErrBlankQuestion
	}

	// the awaiting flag is reserved under the lock; store I/O happens outside it
	s.mu.Lock()
	if !s.document.HasText() {
		s.mu.Unlock()
		return chatModel.Message{}, ErrNoDocument
	}
	if s.awaitingReply {
		s.mu.Unlock()
		return chatModel.Message{}, ErrAwaitingReply
	}
	s.awaitingReply = true
	docText := s.document.Text
	s.mu.Unlock()

	// history is taken before the question is appended; the question goes in as the final turn
	history, err := s.conversation.SnapshotForRequest(ctx)
	if err != nil {
		s.releaseReservation()
		return chatModel.Message{}, err
	}
	msg, err := s.conversation.AppendUser(ctx, question)
	if err != nil {
		s.releaseReservation()
		return chatModel.Message{}, err
	}

	req := prompt.Compose(docText, history, question)
	s.mu.Lock()
	s.pendingAsk = &req
	s.mu.Unlock()
	metrics.SetOutstandingGeneration(true)
	return msg, nil
}

func (s *Session) releaseReservation() {
	s.mu.Lock()
	s.awaitingReply = false
	s.mu.Unlock()
}

// ResolveReply performs the pending generation call and appends exactly one assistant
// message: the reply, the empty-reply fallback or the operational error text. A failed
// call is reported through Reply.Outcome, not the returned error.
func (s *Session) ResolveReply(ctx context.Context) (Reply, error) {
	s.mu.Lock()
	if s.pendingAsk == nil {
		s.mu.Unlock()
		return Reply{}, ErrNothingPending
	}
	req := *s.pendingAsk
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pendingAsk = nil
		s.awaitingReply = false
		s.mu.Unlock()
		metrics.SetOutstandingGeneration(false)
	}()

	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY)

	genCtx := ctx
	if s.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.genTimeout)
		defer cancel()
	}

	start := time.Now()
	text, genErr := s.provider.Generate(genCtx, req)
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))

	reply := Reply{Outcome: OutcomeReply}
	content := text
	switch {
	case genErr != nil:
		log.Error("Generation failed", "error", genErr)
		reply.Outcome, reply.Cause = OutcomeFailed, genErr
		content = chatModel.OperationalErrorReply
	case strings.TrimSpace(text) == "":
		log.Warn("Empty reply, substituting fallback")
		reply.Outcome = OutcomeEmpty
		content = chatModel.EmptyReplyFallback
	}
	metrics.CountGenerationOutcome(string(reply.Outcome))

	msg, err := s.conversation.AppendAssistant(context.WithoutCancel(ctx), content)
	if err != nil {
		return Reply{}, err
	}
	reply.Message = msg
	reply.Blocks = formatter.Format(msg.Content)
	return reply, nil
}

// Ask submits and resolves in one blocking call.
func (s *Session) Ask(ctx context.Context, question string) (Reply, error) {
	if _, err := s.SubmitQuestion(ctx, question); err != nil {
		return Reply{}, err
	}
	return s.ResolveReply(ctx)
}
