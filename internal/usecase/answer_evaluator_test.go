package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEvaluateParsesAndCoerces(t *testing.T) {
	inv := constantInvoker(`{"rating":"8","strengths":"clear; concise, well structured","weaknesses":null,"suggestions":5}`, nil)
	eval := NewAnswerEvaluator(inv, zap.NewNop())

	fb, err := eval.Evaluate(context.Background(), "q", "a")
	require.NoError(t, err)

	require.NotNil(t, fb.Rating)
	assert.Equal(t, 8, *fb.Rating)
	assert.Equal(t, []string{"clear", "concise", "well structured"}, fb.Strengths)
	assert.Equal(t, []string{}, fb.Weaknesses)
	assert.Equal(t, []string{"5"}, fb.Suggestions)
	assert.NotEmpty(t, fb.Raw)
	assert.Empty(t, fb.RawFeedback)
}

func TestEvaluateInvalidRatingBecomesNil(t *testing.T) {
	inv := constantInvoker(`{"rating":"excellent","strengths":["a"],"weaknesses":[],"suggestions":[]}`, nil)
	eval := NewAnswerEvaluator(inv, zap.NewNop())

	fb, err := eval.Evaluate(context.Background(), "q", "a")
	require.NoError(t, err)
	assert.Nil(t, fb.Rating)
}

func TestEvaluateListPassthroughKeepsOrder(t *testing.T) {
	inv := constantInvoker(`{"rating":6,"strengths":["first","second","third"],"weaknesses":"one\ntwo","suggestions":null}`, nil)
	eval := NewAnswerEvaluator(inv, zap.NewNop())

	fb, err := eval.Evaluate(context.Background(), "q", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, fb.Strengths)
	assert.Equal(t, []string{"one", "two"}, fb.Weaknesses)
	assert.Equal(t, []string{}, fb.Suggestions)
}

func TestEvaluateMarkerRetryRecovers(t *testing.T) {
	inv := &scriptedInvoker{fn: func(call int, prompt string) (string, error) {
		if call == 1 {
			return "no json here at all", nil
		}
		return `Sure: <JSON>{"rating":6,"strengths":[],"weaknesses":[],"suggestions":["add metrics"]}</JSON>`, nil
	}}
	eval := NewAnswerEvaluator(inv, zap.NewNop())

	fb, err := eval.Evaluate(context.Background(), "q", "a")
	require.NoError(t, err)
	require.NotNil(t, fb.Rating)
	assert.Equal(t, 6, *fb.Rating)
	assert.Equal(t, []string{"add metrics"}, fb.Suggestions)
	assert.Equal(t, 2, inv.callCount())
}

func TestEvaluateRetryPromptAsksForMarkers(t *testing.T) {
	var retryPrompt string
	inv := &scriptedInvoker{fn: func(call int, prompt string) (string, error) {
		if call == 2 {
			retryPrompt = prompt
		}
		return "still not json", nil
	}}
	eval := NewAnswerEvaluator(inv, zap.NewNop())

	_, err := eval.Evaluate(context.Background(), "q", "a")
	require.NoError(t, err)
	assert.Contains(t, retryPrompt, "<JSON>")
	assert.Contains(t, retryPrompt, "</JSON>")
}

func TestEvaluateRawFeedbackTerminalShape(t *testing.T) {
	inv := constantInvoker("the model rambles without structure", nil)
	eval := NewAnswerEvaluator(inv, zap.NewNop())

	fb, err := eval.Evaluate(context.Background(), "q", "a")
	require.NoError(t, err)

	// Both attempts failed: the original text is preserved verbatim.
	assert.Equal(t, "the model rambles without structure", fb.RawFeedback)
	assert.Nil(t, fb.Rating)
	assert.Empty(t, fb.Raw)
	assert.Equal(t, []string{}, fb.Strengths)
	assert.Equal(t, []string{}, fb.Weaknesses)
	assert.Equal(t, []string{}, fb.Suggestions)
	assert.Equal(t, 2, inv.callCount())
}

func TestEvaluateSafeNeverFails(t *testing.T) {
	longAnswer := strings.Repeat("because of the cache invalidation issue ", 20)
	inv := constantInvoker("", errors.New("boom"))
	eval := NewAnswerEvaluator(inv, zap.NewNop())

	fb := eval.EvaluateSafe(context.Background(), "q", longAnswer)

	assert.Nil(t, fb.Rating)
	require.NotNil(t, fb.Strengths)
	require.NotNil(t, fb.Weaknesses)
	require.NotNil(t, fb.Suggestions)
	assert.Empty(t, fb.Strengths)
	assert.Contains(t, fb.RawFeedback, "LLM failed or returned invalid JSON")
	// Only a truncated prefix of the answer is echoed.
	assert.Less(t, len(fb.RawFeedback), len(longAnswer))
}

func TestEvaluateSafePassesThroughSuccess(t *testing.T) {
	inv := constantInvoker(`{"rating":7,"strengths":["good"],"weaknesses":[],"suggestions":[]}`, nil)
	eval := NewAnswerEvaluator(inv, zap.NewNop())

	fb := eval.EvaluateSafe(context.Background(), "q", "a")
	require.NotNil(t, fb.Rating)
	assert.Equal(t, 7, *fb.Rating)
	assert.Equal(t, []string{"good"}, fb.Strengths)
}

func TestEvaluateQuickEmptyAnswer(t *testing.T) {
	fb := EvaluateQuick("What is your experience with Go?", "   ")

	require.NotNil(t, fb.Rating)
	assert.Equal(t, 1, *fb.Rating)
	assert.Contains(t, fb.Weaknesses, "No answer provided")
	assert.NotEmpty(t, fb.Suggestions)
	assert.NotNil(t, fb.Strengths)
}

func TestEvaluateQuickDetailedAnswer(t *testing.T) {
	answer := "In my previous team I led the redesign of our API gateway. We had latency problems " +
		"under load, so I profiled the hot path, added a cache layer and moved deploys to a CI " +
		"pipeline. The result was a 30% latency decrease and far fewer incidents in production."

	fb := EvaluateQuick("Tell me about a system you improved.", answer)

	require.NotNil(t, fb.Rating)
	assert.GreaterOrEqual(t, *fb.Rating, 1)
	assert.LessOrEqual(t, *fb.Rating, 10)
	assert.NotEmpty(t, fb.Strengths)
	assert.Empty(t, fb.Weaknesses)
}

func TestEvaluateQuickShortAnswerSuggestions(t *testing.T) {
	fb := EvaluateQuick("How do you debug?", "With print statements.")

	require.NotNil(t, fb.Rating)
	assert.Contains(t, fb.Weaknesses, "Answer is short; add an example or more specifics")
	assert.Contains(t, fb.Suggestions, "Include measurable impact (e.g., reduced latency by 30%).")
}

func TestEvaluateQuickIsDeterministic(t *testing.T) {
	first := EvaluateQuick("q", "We built a monitoring dashboard for the database team.")
	second := EvaluateQuick("q", "We built a monitoring dashboard for the database team.")
	assert.Equal(t, first, second)
}
