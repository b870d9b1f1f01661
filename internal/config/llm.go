package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"
)

type LLMConfig struct {
	Provider      string        // "gemini" or "openrouter"
	Model         string
	EvalMode      string        // "llm" or "quick"
	InvokeTimeout time.Duration
	InvokeRetries int
	BackoffFactor float64
}

var (
	llmConfig *LLMConfig
	llmOnce   sync.Once
)

func LoadLLMConfig() *LLMConfig {
	llmOnce.Do(func() {
		provider := os.Getenv("LLM_PROVIDER")
		if provider == "" {
			provider = "gemini"
		}
		model := os.Getenv("LLM_MODEL")
		if model == "" {
			model = "gemini-2.5-flash"
		}
		evalMode := os.Getenv("EVAL_MODE")
		if evalMode == "" {
			evalMode = "llm"
		}
		llmConfig = &LLMConfig{
			Provider:      provider,
			Model:         model,
			EvalMode:      evalMode,
			InvokeTimeout: time.Duration(envInt("LLM_INVOKE_TIMEOUT", 120)) * time.Second,
			InvokeRetries: envInt("LLM_INVOKE_RETRIES", 2),
			BackoffFactor: envFloat("LLM_BACKOFF_FACTOR", 2.0),
		}
	})
	return llmConfig
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, defaulting to %d", key, raw, fallback)
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, defaulting to %g", key, raw, fallback)
		return fallback
	}
	return v
}
