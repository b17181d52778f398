package llm

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/chative-wholesale-agent/agent/contract"
	geminix "github.com/tanpawarit/chative-wholesale-agent/pkg/gemini"
	openrouterx "github.com/tanpawarit/chative-wholesale-agent/pkg/openrouter"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		p       Providers
		wantErr bool
	}{
		{name: "openrouter ok", cfg: Config{Provider: "openrouter"}, p: Providers{OpenRouter: openrouterx.Config{APIKey: "k", Model: "m"}}},
		{name: "openrouter missing model", cfg: Config{Provider: "openrouter"}, p: Providers{OpenRouter: openrouterx.Config{APIKey: "k"}}, wantErr: true},
		{name: "gemini case insensitive", cfg: Config{Provider: " Gemini "}, p: Providers{Gemini: geminix.Config{APIKey: "k"}}},
		{name: "gemini missing key", cfg: Config{Provider: "gemini"}, wantErr: true},
		{name: "unknown provider", cfg: Config{Provider: "ollama"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate(tt.p)
			if tt.wantErr {
				if !errors.Is(err, contractx.ErrModelInvoke) {
					t.Fatalf("Validate() error = %v, want ErrModelInvoke", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}

func TestNewChatModelOpenRouter(t *testing.T) {
	t.Parallel()

	maxTokens := 512
	m, err := NewChatModel(context.Background(), Config{Provider: ProviderOpenRouter}, Providers{
		OpenRouter: openrouterx.Config{BaseURL: "https://openrouter.ai/api/v1", APIKey: "k", Model: "openai/gpt-4o-mini", MaxCompletionToken: &maxTokens},
	})
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	if m == nil {
		t.Fatal("NewChatModel() returned nil")
	}
}
