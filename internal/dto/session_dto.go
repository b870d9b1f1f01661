package dto

import (
	"time"

	"interview-agent/internal/model"
)

type StartInterviewRequest struct {
	JobDescription string `json:"job_description"`
}

type StartInterviewResponse struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type AnswerRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

type AnswerResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type StatusResponse struct {
	SessionID  string                `json:"session_id"`
	Status     string                `json:"status"`
	Question   string                `json:"question"`
	Error      string                `json:"error,omitempty"`
	Evaluation model.EvaluationState `json:"evaluation"`
	Log        []string              `json:"log"`
}

type SessionSummaryDTO struct {
	SessionID string    `json:"session_id"`
	Status    string    `json:"status"`
	Questions int       `json:"questions"`
	Answers   int       `json:"answers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
