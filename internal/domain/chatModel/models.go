package chatModel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akolanti/DoubtSolver/internal/domain/commonModels"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	role := Role(raw)
	if !role.Valid() {
		return fmt.Errorf("unknown message role %q", raw)
	}
	*r = role
	return nil
}

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryEntry is a message with the timestamp stripped, as fed to the prompt composer.
type HistoryEntry struct {
	Role    Role
	Content string
}

type Document struct {
	Name        string               `json:"name"`
	Text        string               `json:"-"`
	PageCount   int                  `json:"page_count"`
	ContentType commonModels.DocType `json:"content_type,omitempty"`
	LoadedAt    time.Time            `json:"loaded_at,omitempty"`
}

func (d Document) HasText() bool {
	return d.Text != ""
}

type DocumentState struct {
	Document    Document `json:"document"`
	Characters  int      `json:"characters"`
	IsLoading   bool     `json:"is_loading"`
	LoadingName string   `json:"loading_name,omitempty"`
	LastError   string   `json:"last_error,omitempty"`
}

// TurnRole is the role vocabulary of the generation boundary.
type TurnRole string

const (
	TurnUser  TurnRole = "user"
	TurnModel TurnRole = "model"
)

type Turn struct {
	Role TurnRole
	Text string
}

type SamplingParams struct {
	Temperature float32
	TopP        float32
	TopK        int32
}

type GenerationRequest struct {
	InstructionBlock string
	Turns            []Turn
	Sampling         SamplingParams
}

const (
	RefusalSentence       = "The provided materials do not contain information regarding this topic."
	EmptyReplyFallback    = "The system could not formulate a response based on the provided material."
	OperationalErrorReply = "Operational Error: Connection to the RAG pipeline timed out. Please verify your configuration."
)

// MessageStore is an append-only conversation log backend keyed by session id.
type MessageStore interface {
	Append(ctx context.Context, sessionId string, msg Message) error
	List(ctx context.Context, sessionId string) ([]Message, error)
	Clear(ctx context.Context, sessionId string) error
}
