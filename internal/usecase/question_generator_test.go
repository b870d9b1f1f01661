package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedInvoker answers Invoke calls from a callback keyed by call number,
// starting at 1. Safe for concurrent use by background units.
type scriptedInvoker struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, prompt string) (string, error)
}

func (s *scriptedInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.fn(call, prompt)
}

func (s *scriptedInvoker) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func constantInvoker(text string, err error) *scriptedInvoker {
	return &scriptedInvoker{fn: func(int, string) (string, error) { return text, err }}
}

func TestGenerateQuestionParsesModelOutput(t *testing.T) {
	inv := constantInvoker(`{"role":"Backend Engineer","seniority":"senior","skills":"Go, Kubernetes","job_type":"full-time","location":"remote","question":"How do you shard a relational database?"}`, nil)
	gen := NewQuestionGenerator(inv, zap.NewNop())

	rec, err := gen.Generate(context.Background(), "Senior backend engineer")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", rec.Role)
	assert.Equal(t, "senior", rec.Seniority)
	assert.Equal(t, "Go, Kubernetes", rec.Skills)
	assert.Equal(t, "full-time", rec.JobType)
	assert.Equal(t, "remote", rec.Location)
	assert.Equal(t, "How do you shard a relational database?", rec.Question)
}

func TestGenerateQuestionPromptContainsJobDescription(t *testing.T) {
	var captured string
	inv := &scriptedInvoker{fn: func(_ int, prompt string) (string, error) {
		captured = prompt
		return `{"question":"q"}`, nil
	}}
	gen := NewQuestionGenerator(inv, zap.NewNop())

	_, err := gen.Generate(context.Background(), "Data engineer, Spark, Airflow")
	require.NoError(t, err)
	assert.Contains(t, captured, "Data engineer, Spark, Airflow")
	assert.Contains(t, captured, `"question"`)
}

func TestGenerateQuestionDefaultsMissingFields(t *testing.T) {
	inv := constantInvoker(`{"question":"Tell me about your stack.","skills":["Go","SQL"]}`, nil)
	gen := NewQuestionGenerator(inv, zap.NewNop())

	rec, err := gen.Generate(context.Background(), "Platform engineer")
	require.NoError(t, err)
	assert.Equal(t, "unspecified", rec.Role)
	assert.Equal(t, "unspecified", rec.Seniority)
	assert.Equal(t, "Go, SQL", rec.Skills)
	assert.Equal(t, "unspecified", rec.JobType)
	assert.Equal(t, "unspecified", rec.Location)
	assert.Equal(t, "Tell me about your stack.", rec.Question)
}

func TestGenerateQuestionCoercesNonStringQuestion(t *testing.T) {
	inv := constantInvoker(`{"question": 42}`, nil)
	gen := NewQuestionGenerator(inv, zap.NewNop())

	rec, err := gen.Generate(context.Background(), "SRE role")
	require.NoError(t, err)
	assert.Equal(t, "42", rec.Question)
}

func TestGenerateQuestionFallbackOnUnparsableOutput(t *testing.T) {
	inv := constantInvoker("I'm sorry, I can't produce JSON today.", nil)
	gen := NewQuestionGenerator(inv, zap.NewNop())

	jd := "Senior backend engineer with focus on distributed systems and large scale data pipelines, ideally with Go experience\nRemote"
	rec, err := gen.Generate(context.Background(), jd)
	require.NoError(t, err)

	// Role is the first line truncated to 60 characters.
	assert.Len(t, []rune(rec.Role), 60)
	assert.True(t, strings.HasPrefix(jd, rec.Role))
	assert.Equal(t, "unspecified", rec.Seniority)
	assert.Equal(t, "", rec.Skills)
	// The templated question references the first word.
	assert.Contains(t, rec.Question, "Senior")
	assert.NotEmpty(t, rec.Question)
}

func TestGenerateQuestionFallbackWhenQuestionMissing(t *testing.T) {
	inv := constantInvoker(`{"role":"QA Engineer"}`, nil)
	gen := NewQuestionGenerator(inv, zap.NewNop())

	rec, err := gen.Generate(context.Background(), "QA engineer, Selenium")
	require.NoError(t, err)
	assert.Equal(t, "QA Engineer", rec.Role)
	assert.NotEmpty(t, rec.Question)
	assert.Contains(t, rec.Question, "QA")
}

func TestGenerateQuestionSurfacesInvocationFailure(t *testing.T) {
	invokeErr := errors.New("llm invocation failed after 3 attempts")
	inv := constantInvoker("", invokeErr)
	gen := NewQuestionGenerator(inv, zap.NewNop())

	rec, err := gen.Generate(context.Background(), "Backend role")
	require.Error(t, err)
	assert.ErrorIs(t, err, invokeErr)
	assert.Nil(t, rec)
}
