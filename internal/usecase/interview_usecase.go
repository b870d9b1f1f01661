package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"interview-agent/internal/logger"
	"interview-agent/internal/model"
	"interview-agent/internal/repository"
)

// ErrBlankJobDescription is returned when an interview is started without a
// usable job description. No session is created in that case.
var ErrBlankJobDescription = errors.New("please provide a job description or topic for a mock interview")

// EvalModeQuick selects the heuristic evaluator instead of the LLM one.
const EvalModeQuick = "quick"

// InterviewUsecase orchestrates interview sessions. Question generation and
// answer evaluation run as detached background units that mutate exactly one
// session; callers observe progress through GetStatus.
type InterviewUsecase struct {
	store     *repository.SessionRepository
	generator *QuestionGenerator
	evaluator *AnswerEvaluator
	evalMode  string
	logger    *zap.Logger
}

func NewInterviewUsecase(
	store *repository.SessionRepository,
	generator *QuestionGenerator,
	evaluator *AnswerEvaluator,
	evalMode string,
	log *zap.Logger,
) *InterviewUsecase {
	return &InterviewUsecase{
		store:     store,
		generator: generator,
		evaluator: evaluator,
		evalMode:  evalMode,
		logger:    log,
	}
}

// StartInterview creates a session in pending state, schedules generation of
// the first question and returns the session id without waiting for it.
func (uc *InterviewUsecase) StartInterview(jobDescription string) (string, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return "", ErrBlankJobDescription
	}

	session := uc.store.Create(jobDescription)
	id := session.ID.String()
	uc.logger.Info("interview started", zap.String("session_id", id))

	go uc.generateFirstQuestion(id)

	return id, nil
}

// SubmitAnswer marks the evaluation pending and schedules the
// evaluate-and-advance unit. It fails only when the session is unknown.
func (uc *InterviewUsecase) SubmitAnswer(sessionID, question, answer string) error {
	session, err := uc.store.Find(sessionID)
	if err != nil {
		return err
	}

	session.BeginEvaluation()
	uc.logger.Info("answer submitted",
		zap.String("session_id", sessionID),
		zap.Int("question_len", len(question)),
		zap.Int("answer_len", len(answer)))

	go uc.evaluateAndAdvance(sessionID, question, answer)

	return nil
}

// GetStatus returns a consistent snapshot of the session. It never blocks on
// background work; a snapshot taken mid-unit simply shows the state written
// so far.
func (uc *InterviewUsecase) GetStatus(sessionID string) (model.SessionSnapshot, error) {
	session, err := uc.store.Find(sessionID)
	if err != nil {
		return model.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// ListSessions returns a page of session snapshots plus the total count.
func (uc *InterviewUsecase) ListSessions(page, pageSize int) ([]model.SessionSnapshot, int64) {
	return uc.store.List(page, pageSize)
}

// generateFirstQuestion is the generate-first-question background unit.
// Nothing escapes it: failures become session error state.
func (uc *InterviewUsecase) generateFirstQuestion(sessionID string) {
	session, err := uc.store.Find(sessionID)
	if err != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("generate-first-question panicked",
				zap.String("session_id", sessionID), zap.Any("panic", r))
			session.SetError(fmt.Sprintf("question generation panicked: %v", r))
		}
	}()

	session.AppendLog("bg_generate_first_question: start")

	rec, err := uc.generator.Generate(context.Background(), session.JobDescription)
	if err != nil {
		uc.logger.Error("first question generation failed",
			zap.String("session_id", sessionID), zap.Error(err))
		session.SetError(err.Error())
		session.AppendLog(fmt.Sprintf("bg_generate_first_question: error: %v", err))
		return
	}

	session.SetFirstQuestion(rec)
	session.AppendLog(fmt.Sprintf("bg_generate_first_question: question ready (%d chars)", len(rec.Question)))
}

// evaluateAndAdvance is the evaluate-and-advance background unit. A panic
// marks the evaluation failed without touching the answer history.
func (uc *InterviewUsecase) evaluateAndAdvance(sessionID, question, answer string) {
	session, err := uc.store.Find(sessionID)
	if err != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("evaluate-and-advance panicked",
				zap.String("session_id", sessionID), zap.Any("panic", r))
			session.FailEvaluation(fmt.Sprintf("evaluation panicked: %v", r))
		}
	}()

	ctx := context.Background()
	session.AppendLog("bg_evaluate_answer: start")

	var feedback model.FeedbackRecord
	if uc.evalMode == EvalModeQuick {
		feedback = EvaluateQuick(question, answer)
	} else {
		feedback = uc.evaluator.EvaluateSafe(ctx, question, answer)
	}
	session.AppendLog("bg_evaluate_answer: evaluator returned")
	if feedback.RawFeedback != "" {
		session.AppendLog("raw_feedback_snippet: " + logger.Truncate(feedback.RawFeedback, 400))
	}

	session.AppendAnswer(question, answer, feedback)

	nextQuestion := ""
	if rec, err := uc.generator.Generate(ctx, session.JobDescription); err == nil {
		nextQuestion = rec.Question
	} else {
		uc.logger.Warn("next question generation failed",
			zap.String("session_id", sessionID), zap.Error(err))
		session.AppendLog(fmt.Sprintf("bg_evaluate_answer: next question failed: %v", err))
	}

	session.CompleteEvaluation(feedback, nextQuestion)
	session.AppendLog("bg_evaluate_answer: finished, evaluation ready")
}
