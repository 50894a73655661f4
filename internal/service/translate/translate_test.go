package translate

import (
	"errors"
	"strings"
	"testing"

	"github.com/versetool/versepane/internal/service"
)

func TestNewKnownProviders(t *testing.T) {
	cfg := Config{APIKey: "test-key"}
	for _, name := range Names() {
		p, err := New(name, cfg)
		if err != nil {
			t.Errorf("New(%q): %v", name, err)
			continue
		}
		if p.Name() != name {
			t.Errorf("Name() = %q, want %q", p.Name(), name)
		}
	}
}

func TestNewIsCaseInsensitive(t *testing.T) {
	p, err := New("Anthropic", Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("babelfish", Config{APIKey: "k"})
	var ue *UnknownProviderError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UnknownProviderError", err)
	}
	if ue.Name != "babelfish" {
		t.Errorf("Name = %q", ue.Name)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, name := range Names() {
		if _, err := New(name, Config{}); !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("New(%q) without key = %v, want ErrNoAPIKey", name, err)
		}
	}
}

func TestNames(t *testing.T) {
	got := Names()
	want := []string{"anthropic", "gemini", "openai"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	req := service.TranslateRequest{
		SourceText:   "Εν αρχη ην ο Λογος",
		SourcePaneID: "src",
		TargetPaneID: "dst",
		VerseIndex:   1,
		Context:      "John 1 opening",
	}
	got := buildPrompt(req, "SBL Greek", "World English Bible")

	for _, want := range []string{
		"Source tradition: SBL Greek",
		"Target tradition: World English Bible",
		"John 1 opening",
		"Εν αρχη ην ο Λογος",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestBuildPromptUnknownResources(t *testing.T) {
	got := buildPrompt(service.TranslateRequest{SourceText: "x"}, "", "")
	if !strings.Contains(got, "Source tradition: unspecified") {
		t.Errorf("prompt = %q", got)
	}
	if strings.Contains(got, "Surrounding context") {
		t.Error("empty context still rendered")
	}
}

func TestClean(t *testing.T) {
	if got, err := clean("  \"In the beginning\" \n"); err != nil || got != "In the beginning" {
		t.Errorf("clean = (%q, %v)", got, err)
	}
	if _, err := clean("   "); !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("clean blank = %v, want ErrEmptyCompletion", err)
	}
}

func TestConfigResourceFor(t *testing.T) {
	cfg := Config{ResourceFor: func(id string) string {
		if id == "main" {
			return "web"
		}
		return ""
	}}
	if got := cfg.resourceFor("main"); got != "web" {
		t.Errorf("resourceFor(main) = %q", got)
	}
	if got := (Config{}).resourceFor("main"); got != "" {
		t.Errorf("nil ResourceFor = %q", got)
	}
}
