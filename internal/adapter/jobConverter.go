package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/DoubtSolver/internal/api"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/domain/jobModel"
	"github.com/akolanti/DoubtSolver/internal/formatter"
	"github.com/akolanti/DoubtSolver/internal/session"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status: string(job.Status),
		Step:   string(job.CurrentStep),
	}
	switch job.JobType {
	case jobModel.JobTypeQuery:
		result.Answer = toAnswerResponse(job.JobPayload)
	case jobModel.JobTypeLoad:
		result.Document = toLoadedDocument(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		JobType:   string(job.JobType),
		SessionId: job.SessionId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func toAnswerResponse(payload jobModel.JobPayload) *api.AnswerResponse {
	if payload.Answer == "" {
		return nil
	}
	return &api.AnswerResponse{
		Question: payload.Question,
		Answer:   payload.Answer,
		Blocks:   formatter.Format(payload.Answer),
	}
}

func toLoadedDocument(payload jobModel.JobPayload) *api.DocumentResponse {
	if payload.DocumentName == "" {
		return nil
	}
	return &api.DocumentResponse{
		Name:       payload.DocumentName,
		PageCount:  payload.PageCount,
		Characters: payload.Characters,
	}
}

func ToSessionResponse(state session.State) api.SessionResponse {
	res := api.SessionResponse{
		SessionId:     state.SessionId,
		Document:      toDocumentResponse(state.Document),
		IsLoading:     state.Document.IsLoading,
		LoadingName:   state.Document.LoadingName,
		LastError:     state.Document.LastError,
		AwaitingReply: state.AwaitingReply,
		Messages:      make([]api.MessageResponse, 0, len(state.Messages)),
	}
	for _, m := range state.Messages {
		res.Messages = append(res.Messages, api.MessageResponse{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
			Blocks:    m.Blocks,
		})
	}
	return res
}

func toDocumentResponse(state chatModel.DocumentState) *api.DocumentResponse {
	if !state.Document.HasText() {
		return nil
	}
	return &api.DocumentResponse{
		Name:        state.Document.Name,
		PageCount:   state.Document.PageCount,
		Characters:  state.Characters,
		ContentType: string(state.Document.ContentType),
		LoadedAt:    state.Document.LoadedAt,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
