package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"interview-agent/internal/logger"
	"interview-agent/internal/model"
	"interview-agent/internal/util"
)

const evalPromptTemplate = `You are an expert interviewer and evaluator.
Question: %s
Candidate Answer: %s

Return ONLY valid JSON with the exact keys: rating (0-10 integer), strengths (list of short strings), weaknesses (list of short strings), suggestions (list of short strings). Do not include any other text.`

const evalRetryPromptTemplate = `Please provide the same JSON output, and wrap it between <JSON> and </JSON> tags with no other text.
Question: %s
Candidate Answer: %s

Return only: <JSON>{...}</JSON>`

var (
	jsonMarkerRe    = regexp.MustCompile(`(?s)<JSON>(.*?)</JSON>`)
	listSeparatorRe = regexp.MustCompile(`[\n;,]`)
)

// AnswerEvaluator scores candidate answers with the LLM.
type AnswerEvaluator struct {
	invoker TextInvoker
	logger  *zap.Logger
}

func NewAnswerEvaluator(invoker TextInvoker, log *zap.Logger) *AnswerEvaluator {
	return &AnswerEvaluator{invoker: invoker, logger: log}
}

// Evaluate runs the primary evaluation prompt. When the output cannot be
// parsed it retries once with explicit <JSON> markers; when that also fails
// the raw model text is returned as a FeedbackRecord with only RawFeedback
// set, which is a legitimate terminal shape rather than an error.
func (e *AnswerEvaluator) Evaluate(ctx context.Context, question, answer string) (model.FeedbackRecord, error) {
	text, err := e.invoker.Invoke(ctx, fmt.Sprintf(evalPromptTemplate, question, answer))
	if err != nil {
		return model.FeedbackRecord{}, fmt.Errorf("evaluate answer: %w", err)
	}

	parsed, ok := util.ExtractJSON(text)
	if !ok {
		retryText, err := e.invoker.Invoke(ctx, fmt.Sprintf(evalRetryPromptTemplate, question, answer))
		if err != nil {
			return model.FeedbackRecord{}, fmt.Errorf("evaluate answer retry: %w", err)
		}
		if m := jsonMarkerRe.FindStringSubmatch(retryText); m != nil {
			parsed, ok = util.ExtractJSON(m[1])
		}
	}

	if !ok {
		e.logger.Warn("llm output failed json parse",
			zap.String("raw", logger.Truncate(text, 400)))
		return model.FeedbackRecord{
			Strengths:   []string{},
			Weaknesses:  []string{},
			Suggestions: []string{},
			RawFeedback: text,
		}, nil
	}

	return validateFeedback(parsed), nil
}

// EvaluateSafe never fails: any error from the primary path is replaced by a
// fixed-shape record whose RawFeedback describes the failure. Every returned
// record has non-nil list fields.
func (e *AnswerEvaluator) EvaluateSafe(ctx context.Context, question, answer string) model.FeedbackRecord {
	feedback, err := e.Evaluate(ctx, question, answer)
	if err != nil {
		e.logger.Warn("evaluate answer failed", zap.Error(err))
		return model.FeedbackRecord{
			Rating:      nil,
			Strengths:   []string{},
			Weaknesses:  []string{},
			Suggestions: []string{},
			RawFeedback: fmt.Sprintf("LLM failed or returned invalid JSON for answer: %s", logger.Truncate(answer, 200)),
		}
	}

	if feedback.Strengths == nil {
		feedback.Strengths = []string{}
	}
	if feedback.Weaknesses == nil {
		feedback.Weaknesses = []string{}
	}
	if feedback.Suggestions == nil {
		feedback.Suggestions = []string{}
	}
	return feedback
}

// validateFeedback is the only place FeedbackRecord defaults are decided.
func validateFeedback(parsed gjson.Result) model.FeedbackRecord {
	return model.FeedbackRecord{
		Rating:      intOrNil(parsed.Get("rating")),
		Strengths:   ensureList(parsed.Get("strengths")),
		Weaknesses:  ensureList(parsed.Get("weaknesses")),
		Suggestions: ensureList(parsed.Get("suggestions")),
		Raw:         json.RawMessage(parsed.Raw),
	}
}

func intOrNil(v gjson.Result) *int {
	switch v.Type {
	case gjson.Number:
		n := int(v.Float())
		return &n
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.String()))
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// ensureList coerces any JSON value into an ordered list of short strings:
// lists pass through, strings split on newline/semicolon/comma, other
// scalars become a single-element list, null and absent become empty.
func ensureList(v gjson.Result) []string {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return []string{}
	case v.IsArray():
		out := []string{}
		for _, item := range v.Array() {
			out = append(out, item.String())
		}
		return out
	case v.Type == gjson.String:
		out := []string{}
		for _, part := range listSeparatorRe.Split(v.String(), -1) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{v.String()}
	}
}

var quickKeywords = []string{
	"design", "scale", "latency", "throughput", "test", "monitor", "debug", "optimiz",
	"performance", "deploy", "ci", "cd", "api", "database", "cache", "security", "team", "lead",
}

var starCues = []string{
	"situation", "task", "action", "result", "impact", "resulted", "led to", "we",
}

var impactCues = []string{"percent", "%", "x times", "increase", "decrease"}

var exampleCues = []string{"example", "we", "i", "led", "implemented", "built"}

// EvaluateQuick is the fast heuristic evaluator: no I/O, deterministic. It
// scores answer length, keyword hits and STAR-structure cues into a rating
// between 1 and 10 with templated strengths, weaknesses and suggestions.
func EvaluateQuick(question, answer string) model.FeedbackRecord {
	text := strings.TrimSpace(answer)
	strengths, weaknesses, suggestions := []string{}, []string{}, []string{}

	if text == "" {
		rating := 1
		weaknesses = append(weaknesses, "No answer provided")
		suggestions = append(suggestions, "Provide a concise answer describing your approach or example.")
		return model.FeedbackRecord{
			Rating:      &rating,
			Strengths:   strengths,
			Weaknesses:  weaknesses,
			Suggestions: suggestions,
		}
	}

	lowered := strings.ToLower(text)

	hits := 0
	for _, keyword := range quickKeywords {
		if strings.Contains(lowered, keyword) {
			hits++
			if len(strengths) < 5 {
				strengths = append(strengths, "Mentions: "+keyword)
			}
		}
	}

	var lengthScore int
	words := len(strings.Fields(text))
	switch {
	case words > 40:
		strengths = append(strengths, "Answer has good detail")
		lengthScore = 7
	case words > 15:
		strengths = append(strengths, "Answer is reasonably detailed")
		lengthScore = 5
	default:
		weaknesses = append(weaknesses, "Answer is short; add an example or more specifics")
		lengthScore = 3
	}

	for _, cue := range starCues {
		if strings.Contains(lowered, cue) {
			strengths = append(strengths, "Uses STAR-style structure or gives concrete impact")
			break
		}
	}

	rating := int(float64(hits)*1.5) + lengthScore
	if rating > 10 {
		rating = 10
	}
	if rating < 1 {
		rating = 1
	}

	if !containsAny(lowered, impactCues) && !strings.Contains(text, "%") {
		suggestions = append(suggestions, "Include measurable impact (e.g., reduced latency by 30%).")
	}
	if !containsAny(lowered, exampleCues) {
		suggestions = append(suggestions, "Add a concrete example with steps and outcome.")
	}

	return model.FeedbackRecord{
		Rating:      &rating,
		Strengths:   strengths,
		Weaknesses:  weaknesses,
		Suggestions: suggestions,
	}
}

func containsAny(s string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(s, cue) {
			return true
		}
	}
	return false
}
