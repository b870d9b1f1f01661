package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"interview-agent/internal/config"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterService is the OpenRouter-backed completion client.
type OpenRouterService struct {
	client *resty.Client
	apiKey string
	model  string
	logger *zap.Logger
}

func NewOpenRouterService(model string, logger *zap.Logger) *OpenRouterService {
	return &OpenRouterService{
		client: resty.New(),
		apiKey: config.LoadOpenRouterConfig().APIKey,
		model:  model,
		logger: logger,
	}
}

// Complete implements CompletionClient with a single chat-completions call.
func (s *OpenRouterService) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"model":       s.model,
			"temperature": 0.7,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}).
		Post(openRouterEndpoint)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode(), resp.String())
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no response from LLM")
	}

	s.logger.Debug("openrouter completion", zap.Int("prompt_chars", len(prompt)), zap.Int("response_chars", len(text)))
	return strings.TrimSpace(text), nil
}
