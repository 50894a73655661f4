package translate

import (
	"sort"
	"strings"

	"github.com/versetool/versepane/internal/service"
)

// Provider is a named translation backend.
type Provider interface {
	service.Translator

	// Name returns the provider's registry name.
	Name() string
}

// Config configures a provider.
type Config struct {
	// APIKey authenticates against the provider.
	APIKey string

	// Model overrides the provider's default model when non-empty.
	Model string

	// ResourceFor maps a pane ID to its text resource name for prompt
	// construction. Nil leaves traditions unspecified in the prompt.
	ResourceFor func(paneID string) string
}

func (c Config) resourceFor(paneID string) string {
	if c.ResourceFor == nil {
		return ""
	}
	return c.ResourceFor(paneID)
}

// Factory builds a provider from a config.
type Factory func(cfg Config) (Provider, error)

// factories is the static provider registry. Providers are compiled in,
// so registration happens here rather than via init side effects.
var factories = map[string]Factory{
	"anthropic": newAnthropic,
	"openai":    newOpenAI,
	"gemini":    newGemini,
}

// Names returns the registered provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named provider.
func New(name string, cfg Config) (Provider, error) {
	factory, ok := factories[strings.ToLower(name)]
	if !ok {
		return nil, &UnknownProviderError{Name: name}
	}
	return factory(cfg)
}

// clean normalizes a model completion into cell-ready text.
func clean(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	if s == "" {
		return "", ErrEmptyCompletion
	}
	return s, nil
}

// callError wraps a provider failure in the shared service error shape.
func callError(provider string, err error) error {
	return &service.CallError{Service: "translate/" + provider, Op: "translate", Err: err}
}
