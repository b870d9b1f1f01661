package model

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session status values.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusError   = "error"
)

// Evaluation sub-state values.
const (
	EvalIdle    = "idle"
	EvalPending = "pending"
	EvalReady   = "ready"
	EvalError   = "error"
)

// QuestionRecord is the structured result of question generation.
type QuestionRecord struct {
	Role      string `json:"role"`
	Seniority string `json:"seniority"`
	Skills    string `json:"skills"`
	JobType   string `json:"job_type"`
	Location  string `json:"location"`
	Question  string `json:"question"`
}

// FeedbackRecord is the structured result of answer evaluation. Rating is nil
// when the model gave none or gave garbage. The list fields are never nil.
// Raw holds the original parsed object; RawFeedback holds the unparsed model
// text when structured extraction failed entirely.
type FeedbackRecord struct {
	Rating      *int            `json:"rating"`
	Strengths   []string        `json:"strengths"`
	Weaknesses  []string        `json:"weaknesses"`
	Suggestions []string        `json:"suggestions"`
	Raw         json.RawMessage `json:"raw,omitempty"`
	RawFeedback string          `json:"raw_feedback,omitempty"`
}

// AnswerRecord pairs one answered question with its feedback.
type AnswerRecord struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Feedback FeedbackRecord `json:"feedback"`
}

// EvaluationState tracks the in-flight or finished evaluation of the latest
// submitted answer.
type EvaluationState struct {
	Status       string          `json:"status"`
	LastFeedback *FeedbackRecord `json:"last_feedback"`
	NextQuestion string          `json:"next_question"`
	Error        string          `json:"error"`
}

// InterviewSession holds all mutable state for one candidate's interview.
// Background units mutate it through the methods below; readers take a
// Snapshot. The Questions, Answers and Log slices only ever grow.
type InterviewSession struct {
	mu sync.RWMutex

	ID             uuid.UUID
	JobDescription string
	Parsed         *QuestionRecord
	Questions      []string
	Answers        []AnswerRecord
	Status         string
	Error          string
	Evaluation     EvaluationState
	Log            []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewInterviewSession(jobDescription string) *InterviewSession {
	now := time.Now()
	return &InterviewSession{
		ID:             uuid.New(),
		JobDescription: jobDescription,
		Status:         StatusPending,
		Evaluation:     EvaluationState{Status: EvalIdle},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AppendLog adds one diagnostic entry.
func (s *InterviewSession) AppendLog(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Log = append(s.Log, entry)
	s.UpdatedAt = time.Now()
}

// SetFirstQuestion records the generated opening question and marks the
// session ready.
func (s *InterviewSession) SetFirstQuestion(rec *QuestionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Parsed = rec
	s.Questions = append(s.Questions, rec.Question)
	s.Status = StatusReady
	s.Evaluation.Status = EvalIdle
	s.UpdatedAt = time.Now()
}

// SetError marks the whole session failed.
func (s *InterviewSession) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusError
	s.Error = msg
	s.UpdatedAt = time.Now()
}

// BeginEvaluation moves the evaluation sub-state to pending and clears any
// previous evaluation error.
func (s *InterviewSession) BeginEvaluation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Evaluation.Status = EvalPending
	s.Evaluation.Error = ""
	s.UpdatedAt = time.Now()
}

// AppendAnswer appends one question/answer/feedback triple to the history.
func (s *InterviewSession) AppendAnswer(question, answer string, feedback FeedbackRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Answers = append(s.Answers, AnswerRecord{Question: question, Answer: answer, Feedback: feedback})
	s.UpdatedAt = time.Now()
}

// CompleteEvaluation publishes the feedback and, when one was generated, the
// next question. An empty nextQuestion is not appended to the question
// history.
func (s *InterviewSession) CompleteEvaluation(feedback FeedbackRecord, nextQuestion string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nextQuestion != "" {
		s.Questions = append(s.Questions, nextQuestion)
	}
	s.Evaluation.Status = EvalReady
	s.Evaluation.LastFeedback = &feedback
	s.Evaluation.NextQuestion = nextQuestion
	s.UpdatedAt = time.Now()
}

// FailEvaluation marks the evaluation sub-state failed without touching the
// answer history.
func (s *InterviewSession) FailEvaluation(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Evaluation.Status = EvalError
	s.Evaluation.Error = msg
	s.UpdatedAt = time.Now()
}

// SessionSnapshot is a consistent, read-only copy of a session.
type SessionSnapshot struct {
	ID             string          `json:"session_id"`
	JobDescription string          `json:"job_description"`
	Status         string          `json:"status"`
	Question       string          `json:"question"`
	Error          string          `json:"error"`
	Evaluation     EvaluationState `json:"evaluation"`
	Questions      []string        `json:"questions"`
	Answers        []AnswerRecord  `json:"answers"`
	Log            []string        `json:"log"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Snapshot copies the session under its read lock. The copy never shares
// backing arrays with the live session, so a caller can hold it while
// background units keep writing.
func (s *InterviewSession) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := SessionSnapshot{
		ID:             s.ID.String(),
		JobDescription: s.JobDescription,
		Status:         s.Status,
		Error:          s.Error,
		Evaluation:     s.Evaluation,
		Questions:      append([]string(nil), s.Questions...),
		Answers:        append([]AnswerRecord(nil), s.Answers...),
		Log:            append([]string(nil), s.Log...),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.Evaluation.LastFeedback != nil {
		fb := *s.Evaluation.LastFeedback
		snap.Evaluation.LastFeedback = &fb
	}
	if len(s.Questions) > 0 {
		snap.Question = s.Questions[len(s.Questions)-1]
	}
	return snap
}
