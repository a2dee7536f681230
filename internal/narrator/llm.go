package narrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"mafia-bot/internal/config"
)

const systemPrompt = `You are the host of a Mafia party game played in a Telegram group. ` +
	`Comment on what just happened in one to three short sentences. ` +
	`Never reveal a living player's role.`

const defaultSummary = "Briefly explain your move in the game of Mafia."

// ErrEmptyResponse is returned by the model when it produced no text.
var ErrEmptyResponse = errors.New("model returned no text")

// generator is the part of llms.Model the narrator uses.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LLM asks a language model for commentary and falls back to another
// Narrator when the model fails.
type LLM struct {
	model    generator
	name     string
	callOpts []llms.CallOption
	timeout  time.Duration
	fallback Narrator
}

func newLLM(model generator, name string, cfg config.NarratorConfig) *LLM {
	var opts []llms.CallOption
	if cfg.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(cfg.Temperature))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	return &LLM{
		model:    model,
		name:     name,
		callOpts: opts,
		timeout:  cfg.Timeout,
		fallback: Stub{},
	}
}

// Explain returns the model's commentary. On any model failure it logs and
// answers with the fallback instead, so the error is always nil.
func (n *LLM) Explain(ctx context.Context, summary string) (string, error) {
	if strings.TrimSpace(summary) == "" {
		summary = defaultSummary
	}
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	text, err := n.generate(ctx, summary)
	if err == nil {
		return text, nil
	}

	log.Warn().Err(err).Str("provider", n.name).Msg("Narrator model failed, using fallback")
	return n.fallback.Explain(ctx, summary)
}

func (n *LLM) generate(ctx context.Context, summary string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, summary),
	}

	resp, err := n.model.GenerateContent(ctx, messages, n.callOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate commentary: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// New builds the narrator selected by cfg.Provider.
func New(ctx context.Context, cfg config.NarratorConfig) (Narrator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var (
		model generator
		err   error
	)
	switch provider {
	case "", "stub":
		log.Info().Msg("Narrator: built-in lines")
		return Stub{}, nil
	case "openai":
		opts := []openai.Option{openai.WithModel(orDefault(cfg.Model, "gpt-4o-mini"))}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(orDefault(cfg.Model, "llama3"))}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
	case "anthropic", "claude":
		opts := []anthropic.Option{anthropic.WithModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, anthropic.WithToken(cfg.APIKey))
		}
		model, err = anthropic.New(opts...)
	case "googleai", "gemini":
		opts := []googleai.Option{googleai.WithDefaultModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, googleai.WithAPIKey(cfg.APIKey))
		}
		model, err = googleai.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown narrator provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init %s narrator: %w", provider, err)
	}

	log.Info().Str("provider", provider).Str("model", cfg.Model).Msg("Narrator: language model")
	return newLLM(model, provider, cfg), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
