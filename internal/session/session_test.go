package session_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/DoubtSolver/internal/conversation"
	"github.com/akolanti/DoubtSolver/internal/data/store"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/formatter"
	"github.com/akolanti/DoubtSolver/internal/llm"
	"github.com/akolanti/DoubtSolver/internal/loader"
	"github.com/akolanti/DoubtSolver/internal/session"
)

const newtonText = "Newton's First Law: an object stays at rest unless acted upon by a force."

func newSession(t *testing.T, provider llm.Provider, docLoader session.DocumentLoader) *session.Session {
	t.Helper()
	conv := conversation.New(store.InitMessageStore(), "test-session")
	return session.New(conv, provider, docLoader)
}

func textLoader(text string) *MockLoader {
	return &MockLoader{OnLoad: func(ctx context.Context, src loader.Source) (loader.Extraction, error) {
		return loader.Extraction{Text: text, PageCount: 1}, nil
	}}
}

func loadNewton(t *testing.T, s *session.Session) {
	t.Helper()
	if _, err := s.LoadDocument(context.Background(), loader.Source{Name: "physics.txt", Path: "/tmp/physics.txt"}); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
}

func messages(t *testing.T, s *session.Session) []session.MessageView {
	t.Helper()
	state, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return state.Messages
}

func TestAsk_EndToEnd(t *testing.T) {
	var seen chatModel.GenerationRequest
	mLLM := &MockLLM{OnGenerate: func(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
		seen = req
		return "### Law\n- An object stays at rest **unless** acted upon.", nil
	}}
	s := newSession(t, mLLM, textLoader(newtonText))
	loadNewton(t, s)

	reply, err := s.Ask(context.Background(), "What is Newton's First Law?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	want := []formatter.Block{
		{Type: formatter.Heading1, Text: "Law"},
		{
			Type: formatter.BulletItem,
			Text: "An object stays at rest **unless** acted upon.",
			Runs: []formatter.Run{
				{Text: "An object stays at rest "},
				{Text: "unless", Bold: true},
				{Text: " acted upon."},
			},
		},
	}
	if !reflect.DeepEqual(reply.Blocks, want) {
		t.Errorf("blocks got %+v\nwant %+v", reply.Blocks, want)
	}
	if reply.Outcome != session.OutcomeReply {
		t.Errorf("outcome got %s", reply.Outcome)
	}

	if !strings.Contains(seen.InstructionBlock, newtonText) {
		t.Error("document text missing from the instruction block")
	}
	if len(seen.Turns) != 1 || seen.Turns[0].Text != "What is Newton's First Law?" {
		t.Errorf("turns got %+v", seen.Turns)
	}

	msgs := messages(t, s)
	if len(msgs) != 2 || msgs[0].Role != chatModel.RoleUser || msgs[1].Role != chatModel.RoleAssistant {
		t.Fatalf("messages got %+v", msgs)
	}
	if !reflect.DeepEqual(msgs[1].Blocks, want) {
		t.Error("snapshot blocks differ from reply blocks")
	}
	if msgs[0].Blocks != nil {
		t.Error("user messages carry no blocks")
	}
}

func TestAsk_ReplyOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		provider    llm.Provider
		wantContent string
		wantOutcome session.Outcome
	}{
		{
			name: "Network failure",
			provider: &MockLLM{OnGenerate: func(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
				return "", errors.New("connection reset")
			}},
			wantContent: chatModel.OperationalErrorReply,
			wantOutcome: session.OutcomeFailed,
		},
		{
			name:        "Missing credential",
			provider:    llm.Unavailable(llm.ErrMissingCredential),
			wantContent: chatModel.OperationalErrorReply,
			wantOutcome: session.OutcomeFailed,
		},
		{
			name: "Empty reply",
			provider: &MockLLM{OnGenerate: func(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
				return "", nil
			}},
			wantContent: chatModel.EmptyReplyFallback,
			wantOutcome: session.OutcomeEmpty,
		},
		{
			name: "Whitespace reply",
			provider: &MockLLM{OnGenerate: func(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
				return " \n\t", nil
			}},
			wantContent: chatModel.EmptyReplyFallback,
			wantOutcome: session.OutcomeEmpty,
		},
		{
			name: "Refusal passes through",
			provider: &MockLLM{OnGenerate: func(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
				return chatModel.RefusalSentence, nil
			}},
			wantContent: chatModel.RefusalSentence,
			wantOutcome: session.OutcomeReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, tt.provider, textLoader(newtonText))
			loadNewton(t, s)

			reply, err := s.Ask(context.Background(), "What is X?")
			if err != nil {
				t.Fatalf("Ask: %v", err)
			}
			if reply.Outcome != tt.wantOutcome {
				t.Errorf("outcome got %s, want %s", reply.Outcome, tt.wantOutcome)
			}
			if (reply.Cause != nil) != (tt.wantOutcome == session.OutcomeFailed) {
				t.Errorf("cause got %v", reply.Cause)
			}

			msgs := messages(t, s)
			assistants := 0
			for _, m := range msgs {
				if m.Role == chatModel.RoleAssistant {
					assistants++
					if m.Content != tt.wantContent {
						t.Errorf("assistant content got %q, want %q", m.Content, tt.wantContent)
					}
				}
			}
			if assistants != 1 {
				t.Errorf("expected exactly one assistant message, got %d", assistants)
			}
			if s.AwaitingReply() {
				t.Error("awaiting flag must be cleared after the call resolves")
			}
		})
	}
}

func TestSubmitQuestion_Gates(t *testing.T) {
	tests := []struct {
		name     string
		loadDoc  bool
		question string
		wantErr  error
	}{
		{"Blank question", true, "   \n", session.ErrBlankQuestion},
		{"Empty question", true, "", session.ErrBlankQuestion},
		{"No document", false, "What is X?", session.ErrNoDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mLLM := &MockLLM{}
			s := newSession(t, mLLM, textLoader(newtonText))
			if tt.loadDoc {
				loadNewton(t, s)
			}

			_, err := s.SubmitQuestion(context.Background(), tt.question)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err got %v, want %v", err, tt.wantErr)
			}
			if len(messages(t, s)) != 0 {
				t.Error("a rejected question must not be recorded")
			}
			if mLLM.Calls() != 0 {
				t.Error("no generation call expected")
			}
		})
	}
}

func TestSubmitQuestion_RejectsWhileAwaitingReply(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	mLLM := &MockLLM{OnGenerate: func(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
		close(started)
		<-release
		return "first answer", nil
	}}
	s := newSession(t, mLLM, textLoader(newtonText))
	loadNewton(t, s)

	done := make(chan session.Reply)
	go func() {
		reply, _ := s.Ask(context.Background(), "first")
		done <- reply
	}()
	<-started

	if _, err := s.SubmitQuestion(context.Background(), "second"); !errors.Is(err, session.ErrAwaitingReply) {
		t.Fatalf("err got %v, want ErrAwaitingReply", err)
	}
	if !s.AwaitingReply() {
		t.Error("expected awaiting flag while the call is outstanding")
	}

	close(release)
	<-done

	if mLLM.Calls() != 1 {
		t.Errorf("expected a single dispatched call, got %d", mLLM.Calls())
	}
	if n := len(messages(t, s)); n != 2 {
		t.Errorf("messages got %d, want 2", n)
	}

	mLLM.OnGenerate = nil
	if _, err := s.Ask(context.Background(), "second"); err != nil {
		t.Errorf("question after resolution should be accepted: %v", err)
	}
}

func TestSubmitQuestion_StoreWriteDoesNotBlockSession(t *testing.T) {
	gated := &GatedStore{MessageStore: store.InitMessageStore()}
	s := session.New(conversation.New(gated, "gated"), &MockLLM{}, textLoader(newtonText))
	loadNewton(t, s)

	gated.Gate, gated.Entered = make(chan struct{}), make(chan struct{}, 1)
	defer func() { gated.Gate = nil }()
	submitted := make(chan error, 1)
	go func() {
		_, err := s.SubmitQuestion(context.Background(), "What is inertia?")
		submitted <- err
	}()
	<-gated.Entered

	read := make(chan bool, 1)
	go func() {
		_ = s.DocumentState()
		read <- s.AwaitingReply()
	}()
	select {
	case awaiting := <-read:
		if !awaiting {
			t.Error("question in flight should already count as awaiting")
		}
	case <-time.After(time.Second):
		t.Fatal("session state blocked behind a slow store write")
	}
	if _, err := s.SubmitQuestion(context.Background(), "Second?"); !errors.Is(err, session.ErrAwaitingReply) {
		t.Errorf("second question got %v, want ErrAwaitingReply", err)
	}

	close(gated.Gate)
	if err := <-submitted; err != nil {
		t.Fatalf("submit: %v", err)
	}
	reply, err := s.ResolveReply(context.Background())
	if err != nil || reply.Outcome != session.OutcomeReply {
		t.Fatalf("resolve got %+v, %v", reply, err)
	}
	if got := len(messages(t, s)); got != 2 {
		t.Errorf("messages got %d, want 2", got)
	}
}

func TestSubmitQuestion_StoreFailureReleasesReservation(t *testing.T) {
	gated := &GatedStore{MessageStore: store.InitMessageStore()}
	s := session.New(conversation.New(gated, "failing"), &MockLLM{}, textLoader(newtonText))
	loadNewton(t, s)

	storeErr := errors.New("redis down")
	gated.FailAppend = storeErr
	if _, err := s.SubmitQuestion(context.Background(), "What is inertia?"); !errors.Is(err, storeErr) {
		t.Fatalf("got %v, want the store error", err)
	}
	if s.AwaitingReply() {
		t.Fatal("failed submit left the session awaiting a reply")
	}
	if _, err := s.ResolveReply(context.Background()); !errors.Is(err, session.ErrNothingPending) {
		t.Errorf("resolve got %v, want ErrNothingPending", err)
	}

	gated.FailAppend = nil
	if _, err := s.Ask(context.Background(), "What is inertia?"); err != nil {
		t.Errorf("retry after store recovery: %v", err)
	}
}

func TestAsk_HistoryExcludesCurrentQuestion(t *testing.T) {
	var requests []chatModel.GenerationRequest
	mLLM := &MockLLM{OnGenerate: func(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
		requests = append(requests, req)
		return "answer " + req.Turns[len(req.Turns)-1].Text, nil
	}}
	s := newSession(t, mLLM, textLoader(newtonText))
	loadNewton(t, s)

	for _, q := range []string{"q1", "q2"} {
		if _, err := s.Ask(context.Background(), q); err != nil {
			t.Fatal(err)
		}
	}

	want := []chatModel.Turn{
		{Role: chatModel.TurnUser, Text: "q1"},
		{Role: chatModel.TurnModel, Text: "answer q1"},
		{Role: chatModel.TurnUser, Text: "q2"},
	}
	if !reflect.DeepEqual(requests[1].Turns, want) {
		t.Errorf("second request turns got %+v", requests[1].Turns)
	}
}

func TestResolveReply_NothingPending(t *testing.T) {
	s := newSession(t, &MockLLM{}, textLoader(newtonText))
	if _, err := s.ResolveReply(context.Background()); !errors.Is(err, session.ErrNothingPending) {
		t.Errorf("err got %v", err)
	}
	if _, err := s.RunLoad(context.Background()); !errors.Is(err, session.ErrNothingPending) {
		t.Errorf("err got %v", err)
	}
}

func TestClearConversation_DuringOutstandingCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	mLLM := &MockLLM{OnGenerate: func(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
		close(started)
		<-release
		return "late answer", nil
	}}
	s := newSession(t, mLLM, textLoader(newtonText))
	loadNewton(t, s)

	done := make(chan struct{})
	go func() {
		_, _ = s.Ask(context.Background(), "q")
		close(done)
	}()
	<-started

	if err := s.ClearConversation(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(messages(t, s)); n != 0 {
		t.Errorf("log should be empty right after clear, got %d", n)
	}

	close(release)
	<-done

	msgs := messages(t, s)
	if len(msgs) != 1 || msgs[0].Role != chatModel.RoleAssistant || msgs[0].Content != "late answer" {
		t.Errorf("late reply should land in the cleared log, got %+v", msgs)
	}
}

func TestLoadDocument(t *testing.T) {
	t.Run("Success replaces document and clears conversation", func(t *testing.T) {
		mLoader := &MockLoader{OnLoad: func(ctx context.Context, src loader.Source) (loader.Extraction, error) {
			if src.Name == "chem.pdf" {
				return loader.Extraction{Text: "chemistry notes", PageCount: 3}, nil
			}
			return loader.Extraction{Text: newtonText, PageCount: 1}, nil
		}}
		s := newSession(t, &MockLLM{}, mLoader)
		loadNewton(t, s)
		if _, err := s.Ask(context.Background(), "q"); err != nil {
			t.Fatal(err)
		}

		doc, err := s.LoadDocument(context.Background(), loader.Source{Path: "/uploads/chem.pdf"})
		if err != nil {
			t.Fatal(err)
		}
		if doc.Name != "chem.pdf" || doc.PageCount != 3 {
			t.Errorf("document got %+v", doc)
		}
		if n := len(messages(t, s)); n != 0 {
			t.Errorf("conversation should be cleared by a new document, got %d", n)
		}
		state := s.DocumentState()
		if state.IsLoading || state.LastError != "" || state.Characters != len("chemistry notes") {
			t.Errorf("state got %+v", state)
		}
	})

	t.Run("Failure keeps previous document", func(t *testing.T) {
		fail := false
		mLoader := &MockLoader{OnLoad: func(ctx context.Context, src loader.Source) (loader.Extraction, error) {
			if fail {
				return loader.Extraction{}, loader.ErrNoText
			}
			return loader.Extraction{Text: newtonText, PageCount: 1}, nil
		}}
		s := newSession(t, &MockLLM{}, mLoader)
		loadNewton(t, s)
		if _, err := s.Ask(context.Background(), "q"); err != nil {
			t.Fatal(err)
		}

		fail = true
		_, err := s.LoadDocument(context.Background(), loader.Source{Name: "broken.pdf"})
		if !errors.Is(err, loader.ErrLoadFailure) {
			t.Fatalf("err got %v", err)
		}

		state := s.DocumentState()
		if state.Document.Name != "physics.txt" || state.Document.Text != newtonText {
			t.Errorf("previous document lost: %+v", state.Document)
		}
		if state.IsLoading {
			t.Error("loading flag must be cleared after failure")
		}
		if state.LastError == "" {
			t.Error("failure should be surfaced as LastError")
		}
		if n := len(messages(t, s)); n != 2 {
			t.Errorf("conversation should survive a failed load, got %d", n)
		}
		if _, err = s.Ask(context.Background(), "still works?"); err != nil {
			t.Errorf("previous document should stay usable: %v", err)
		}
	})

	t.Run("Second load rejected while one is outstanding", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		mLoader := &MockLoader{OnLoad: func(ctx context.Context, src loader.Source) (loader.Extraction, error) {
			close(started)
			<-release
			return loader.Extraction{Text: "slow doc", PageCount: 1}, nil
		}}
		s := newSession(t, &MockLLM{}, mLoader)

		done := make(chan struct{})
		go func() {
			_, _ = s.LoadDocument(context.Background(), loader.Source{Name: "slow.pdf"})
			close(done)
		}()
		<-started

		if err := s.BeginLoad(loader.Source{Name: "other.pdf"}); !errors.Is(err, session.ErrLoadInProgress) {
			t.Errorf("err got %v, want ErrLoadInProgress", err)
		}
		state := s.DocumentState()
		if !state.IsLoading || state.LoadingName != "slow.pdf" {
			t.Errorf("state got %+v", state)
		}

		close(release)
		<-done
		if s.DocumentState().Document.Name != "slow.pdf" {
			t.Error("first load should have completed")
		}
	})

	t.Run("Question during load uses previous document", func(t *testing.T) {
		release := make(chan struct{})
		calls := 0
		mLoader := &MockLoader{OnLoad: func(ctx context.Context, src loader.Source) (loader.Extraction, error) {
			calls++
			if calls > 1 {
				<-release
			}
			return loader.Extraction{Text: src.Name + " text", PageCount: 1}, nil
		}}
		var seen string
		mLLM := &MockLLM{OnGenerate: func(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
			seen = req.InstructionBlock
			return "ok", nil
		}}
		s := newSession(t, mLLM, mLoader)
		if _, err := s.LoadDocument(context.Background(), loader.Source{Name: "old"}); err != nil {
			t.Fatal(err)
		}

		if err := s.BeginLoad(loader.Source{Name: "new"}); err != nil {
			t.Fatal(err)
		}
		done := make(chan struct{})
		go func() {
			_, _ = s.RunLoad(context.Background())
			close(done)
		}()

		if _, err := s.Ask(context.Background(), "q"); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(seen, "old text") {
			t.Error("question should be answered from the active document")
		}
		close(release)
		<-done
	})
}

func TestSnapshot_Timestamps(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	conv := conversation.New(store.InitMessageStore(), "clocked", conversation.WithClock(func() time.Time { return now }))
	s := session.New(conv, &MockLLM{}, textLoader(newtonText), session.WithClock(func() time.Time { return now }))
	loadNewton(t, s)
	_, _ = s.Ask(context.Background(), "q")

	state, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state.SessionId != "clocked" || !state.Document.Document.LoadedAt.Equal(now) {
		t.Errorf("state got %+v", state)
	}
	for _, m := range state.Messages {
		if !m.Timestamp.Equal(now) {
			t.Errorf("timestamp got %v", m.Timestamp)
		}
	}
}
