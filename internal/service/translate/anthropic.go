package translate

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/versetool/versepane/internal/service"
)

const anthropicDefaultModel = "claude-sonnet-4-5"

// anthropicProvider translates through the Anthropic Messages API.
type anthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
	cfg    Config
}

func newAnthropic(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropicDefaultModel
	}
	return &anthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
		cfg:    cfg,
	}, nil
}

// Name implements Provider.
func (p *anthropicProvider) Name() string { return "anthropic" }

// Translate implements service.Translator.
func (p *anthropicProvider) Translate(ctx context.Context, req service.TranslateRequest) (string, error) {
	prompt := buildPrompt(req, p.cfg.resourceFor(req.SourcePaneID), p.cfg.resourceFor(req.TargetPaneID))

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", callError("anthropic", err)
	}

	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	text, err := clean(out)
	if err != nil {
		return "", callError("anthropic", err)
	}
	return text, nil
}
