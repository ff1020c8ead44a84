package api

import (
	"time"

	"github.com/akolanti/DoubtSolver/internal/formatter"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"4f1c2a9e-2b1d-4b8e-9d0a-1c9f3e7a5b21"`
	JobType   string            `json:"job_type,omitempty" example:"Query"`
	SessionId string            `json:"session_id,omitempty" example:"0b7d6c52-55c4-4bd5-a8a2-0d8a2b6f0e11"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status   string            `json:"status" example:"COMPLETE"`
	Step     string            `json:"step,omitempty" example:"Complete"`
	Answer   *AnswerResponse   `json:"answer,omitempty"`
	Document *DocumentResponse `json:"document,omitempty"`
}

type AnswerResponse struct {
	Question string            `json:"question"`
	Answer   string            `json:"answer"`
	Blocks   []formatter.Block `json:"blocks,omitempty"`
}

type DocumentResponse struct {
	Name        string    `json:"name" example:"thermodynamics.pdf"`
	PageCount   int       `json:"page_count" example:"12"`
	Characters  int       `json:"characters" example:"48210"`
	ContentType string    `json:"content_type,omitempty" example:"PDF"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type SessionResponse struct {
	SessionId     string            `json:"session_id"`
	Document      *DocumentResponse `json:"document,omitempty"`
	IsLoading     bool              `json:"is_loading"`
	LoadingName   string            `json:"loading_name,omitempty"`
	LastError     string            `json:"last_error,omitempty"`
	AwaitingReply bool              `json:"awaiting_reply"`
	Messages      []MessageResponse `json:"messages"`
}

type MessageResponse struct {
	Role      string            `json:"role" example:"assistant"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Blocks    []formatter.Block `json:"blocks,omitempty"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" example:"What is Newton's First Law?"`
}
