package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	QueryInit InternalStatus = "QueryInit"
	LLMCall   InternalStatus = "LLM"

	LoadInit       InternalStatus = "LoadInit"
	LoadProcessing InternalStatus = "LoadProcessing"
	Error          InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery JobType = "Query"
	JobTypeLoad  JobType = "Load"
)

type Job struct {
	Id          string         `json:"id"`
	SessionId   string         `json:"session_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`

	DocumentName string `json:"document_name,omitempty"`
	PageCount    int    `json:"page_count,omitempty"`
	Characters   int    `json:"characters,omitempty"`
	// uploaded file, removed once the load job finishes
	SourcePath string `json:"-"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
