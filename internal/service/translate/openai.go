package translate

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/versetool/versepane/internal/service"
)

const openaiDefaultModel = openai.ChatModelGPT4o

// openaiProvider translates through the OpenAI chat completions API.
type openaiProvider struct {
	client openai.Client
	model  string
	cfg    Config
}

func newOpenAI(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = openaiDefaultModel
	}
	return &openaiProvider{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
		cfg:    cfg,
	}, nil
}

// Name implements Provider.
func (p *openaiProvider) Name() string { return "openai" }

// Translate implements service.Translator.
func (p *openaiProvider) Translate(ctx context.Context, req service.TranslateRequest) (string, error) {
	prompt := buildPrompt(req, p.cfg.resourceFor(req.SourcePaneID), p.cfg.resourceFor(req.TargetPaneID))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", callError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", callError("openai", ErrEmptyCompletion)
	}
	text, err := clean(resp.Choices[0].Message.Content)
	if err != nil {
		return "", callError("openai", err)
	}
	return text, nil
}
