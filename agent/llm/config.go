package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"

	contractx "github.com/tanpawarit/chative-wholesale-agent/agent/contract"
	geminix "github.com/tanpawarit/chative-wholesale-agent/pkg/gemini"
	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
	openrouterx "github.com/tanpawarit/chative-wholesale-agent/pkg/openrouter"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

type Config struct {
	Provider string `envconfig:"PROVIDER" split_words:"true" default:"openrouter"`
}

// Providers carries the per-provider settings; only the selected one is used.
type Providers struct {
	OpenRouter openrouterx.Config
	Gemini     geminix.Config
}

// ProviderName is the normalized provider id.
func (c Config) ProviderName() string {
	return strings.ToLower(strings.TrimSpace(c.Provider))
}

func (c Config) Validate(p Providers) error {
	switch c.ProviderName() {
	case ProviderOpenRouter:
		if strings.TrimSpace(p.OpenRouter.APIKey) == "" {
			return fmt.Errorf("%w: openrouter api key is required", contractx.ErrModelInvoke)
		}
		if strings.TrimSpace(p.OpenRouter.Model) == "" {
			return fmt.Errorf("%w: openrouter model is required", contractx.ErrModelInvoke)
		}
	case ProviderGemini:
		if strings.TrimSpace(p.Gemini.APIKey) == "" {
			return fmt.Errorf("%w: gemini api key is required", contractx.ErrModelInvoke)
		}
	default:
		return fmt.Errorf("%w: unknown llm provider %q", contractx.ErrModelInvoke, c.Provider)
	}
	return nil
}

// NewChatModel builds the chat model for the configured provider. OpenRouter
// models are verified upstream first when VerifyModel is set.
func NewChatModel(ctx context.Context, c Config, p Providers) (model.ToolCallingChatModel, error) {
	if err := c.Validate(p); err != nil {
		return nil, err
	}

	var builder openrouterx.LLMBuilder
	switch c.ProviderName() {
	case ProviderGemini:
		builder = &p.Gemini
	default:
		if p.OpenRouter.VerifyModel {
			if err := openrouterx.VerifyModel(ctx, p.OpenRouter); err != nil {
				return nil, err
			}
		}
		builder = &p.OpenRouter
	}

	m, err := builder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("build %s chat model: %w", c.ProviderName(), err)
	}
	logx.Info().Str("provider", c.ProviderName()).Msg("chat model ready")
	return m, nil
}
