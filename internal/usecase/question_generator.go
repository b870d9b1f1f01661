package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"interview-agent/internal/logger"
	"interview-agent/internal/model"
	"interview-agent/internal/util"
)

// TextInvoker abstracts the resilient invocation layer so usecases can be
// tested against stubs.
type TextInvoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

const questionPromptTemplate = `You are an expert interviewer.
Given the following job description, extract the fields: role, seniority, skills, job_type, location, and then produce ONE concise, relevant interview question tailored to the role.
Return a JSON object with keys: "role", "seniority", "skills", "job_type", "location", "question" and nothing else.

Job Description:
%s

Respond with JSON only.`

// QuestionGenerator produces interview questions from a job description.
type QuestionGenerator struct {
	invoker TextInvoker
	logger  *zap.Logger
}

func NewQuestionGenerator(invoker TextInvoker, log *zap.Logger) *QuestionGenerator {
	return &QuestionGenerator{invoker: invoker, logger: log}
}

// Generate asks the model for a QuestionRecord. Output that cannot be parsed
// is absorbed into a deterministic fallback record; the only error surfaced
// is a terminal invocation failure.
func (g *QuestionGenerator) Generate(ctx context.Context, jobDescription string) (*model.QuestionRecord, error) {
	text, err := g.invoker.Invoke(ctx, fmt.Sprintf(questionPromptTemplate, jobDescription))
	if err != nil {
		return nil, fmt.Errorf("generate question: %w", err)
	}

	parsed, ok := util.ExtractJSON(text)
	if !ok {
		g.logger.Warn("question output failed json parse, using fallback",
			zap.String("raw", logger.Truncate(text, 200)))
		return fallbackQuestionRecord(jobDescription), nil
	}

	return questionRecordFrom(parsed, jobDescription), nil
}

// questionRecordFrom coerces parsed model output into a QuestionRecord. This
// is the only place the record's defaults are decided.
func questionRecordFrom(parsed gjson.Result, jobDescription string) *model.QuestionRecord {
	rec := &model.QuestionRecord{
		Role:      stringField(parsed, "role", "unspecified"),
		Seniority: stringField(parsed, "seniority", "unspecified"),
		Skills:    stringField(parsed, "skills", ""),
		JobType:   stringField(parsed, "job_type", "unspecified"),
		Location:  stringField(parsed, "location", "unspecified"),
		Question:  stringField(parsed, "question", ""),
	}
	if rec.Question == "" {
		rec.Question = templatedQuestion(jobDescription)
	}
	return rec
}

func fallbackQuestionRecord(jobDescription string) *model.QuestionRecord {
	return &model.QuestionRecord{
		Role:      firstLine(jobDescription, 60),
		Seniority: "unspecified",
		Skills:    "",
		JobType:   "unspecified",
		Location:  "unspecified",
		Question:  templatedQuestion(jobDescription),
	}
}

func templatedQuestion(jobDescription string) string {
	topic := "this role"
	if fields := strings.Fields(jobDescription); len(fields) > 0 {
		topic = fields[0]
	}
	return fmt.Sprintf("Based on the job description, can you tell me about your experience related to %s?", topic)
}

func firstLine(s string, limit int) string {
	line := strings.SplitN(s, "\n", 2)[0]
	runes := []rune(line)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return line
}

// stringField reads one key as a trimmed string, flattening arrays to a
// comma-separated list. Missing, null and blank values yield the fallback.
func stringField(parsed gjson.Result, key, fallback string) string {
	v := parsed.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return fallback
	}
	if v.IsArray() {
		parts := []string{}
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return fallback
		}
		return strings.Join(parts, ", ")
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return fallback
	}
	return s
}
