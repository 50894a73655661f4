package translate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/versetool/versepane/internal/service"
)

const geminiDefaultModel = "gemini-1.5-flash"

// geminiProvider translates through the Gemini API.
//
// The underlying client is created lazily on the first call because the
// SDK constructor requires a context.
type geminiProvider struct {
	cfg   Config
	model string

	mu     sync.Mutex
	client *genai.Client
}

func newGemini(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = geminiDefaultModel
	}
	return &geminiProvider{cfg: cfg, model: model}, nil
}

// Name implements Provider.
func (p *geminiProvider) Name() string { return "gemini" }

// Translate implements service.Translator.
func (p *geminiProvider) Translate(ctx context.Context, req service.TranslateRequest) (string, error) {
	p.mu.Lock()
	if p.client == nil {
		client, err := genai.NewClient(ctx, option.WithAPIKey(p.cfg.APIKey))
		if err != nil {
			p.mu.Unlock()
			return "", callError("gemini", err)
		}
		p.client = client
	}
	client := p.client
	p.mu.Unlock()

	model := client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	prompt := buildPrompt(req, p.cfg.resourceFor(req.SourcePaneID), p.cfg.resourceFor(req.TargetPaneID))
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", callError("gemini", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", callError("gemini", ErrEmptyCompletion)
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			out += string(t)
		}
	}
	text, err := clean(out)
	if err != nil {
		return "", callError("gemini", err)
	}
	return text, nil
}

// Close releases the underlying client, if one was created.
func (p *geminiProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("closing gemini client: %w", err)
	}
	p.client = nil
	return nil
}
