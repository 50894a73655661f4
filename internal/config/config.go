package config

import "time"

// Settings is the full versepane configuration.
type Settings struct {
	// LogLevel selects the minimum logged severity: debug, info, warn,
	// or error.
	LogLevel string `toml:"log_level"`

	// Editor groups editing and analysis pacing.
	Editor Editor `toml:"editor"`

	// Sync groups cross-pane scroll behavior.
	Sync Sync `toml:"sync"`

	// Services groups external collaborator endpoints.
	Services Services `toml:"services"`

	// Panes holds per-pane preferences keyed by pane ID.
	Panes []PaneSettings `toml:"panes"`
}

// Editor holds editing and analysis pacing settings.
type Editor struct {
	// AnalysisDebounceMS is the quiet period after the last keystroke
	// before a verse is analyzed, in milliseconds.
	AnalysisDebounceMS int `toml:"analysis_debounce_ms"`

	// MinCommitIntervalMS is the minimum spacing between two autosave
	// commits from one verse, in milliseconds.
	MinCommitIntervalMS int `toml:"min_commit_interval_ms"`

	// MinWordLength is the shortest word the bulk dictionary add keeps.
	MinWordLength int `toml:"min_word_length"`

	// InterItemDelayMS is the pause between translated items of a
	// dropped batch, in milliseconds.
	InterItemDelayMS int `toml:"inter_item_delay_ms"`
}

// Sync holds cross-pane scroll settings.
type Sync struct {
	// ScrollMargin is the pixel gap kept above a synced verse.
	ScrollMargin int `toml:"scroll_margin"`
}

// Services holds external collaborator configuration.
type Services struct {
	// AnalyzerURL is the consistency analysis endpoint.
	AnalyzerURL string `toml:"analyzer_url"`

	// DictionaryURL is the project dictionary endpoint.
	DictionaryURL string `toml:"dictionary_url"`

	// AutosaveURL is the commit persistence endpoint. Empty logs commits
	// locally instead.
	AutosaveURL string `toml:"autosave_url"`

	// LibraryURL is the chapter text store. Empty disables cross-chapter
	// sync loading.
	LibraryURL string `toml:"library_url"`

	// RulesScript is an optional Lua rules file analyzed locally before
	// the remote analyzer is consulted.
	RulesScript string `toml:"rules_script"`

	// Translator names the translation provider: anthropic, openai, or
	// gemini.
	Translator string `toml:"translator"`

	// TranslatorModel overrides the provider's default model.
	TranslatorModel string `toml:"translator_model"`

	// APIKeyEnv names the environment variable holding the provider
	// API key. Keys never live in the config file itself.
	APIKeyEnv string `toml:"api_key_env"`
}

// PaneSettings is one pane's persisted preferences.
type PaneSettings struct {
	// ID is the pane's stable identity.
	ID string `toml:"id"`

	// Role is "primary" or "secondary".
	Role string `toml:"role"`

	// Title is the user-visible pane title.
	Title string `toml:"title"`

	// Resource names the text resource the pane displays.
	Resource string `toml:"resource"`

	// SyncEnabled controls whether the pane follows cross-pane syncs.
	SyncEnabled bool `toml:"sync_enabled"`

	// AnnotationsEnabled controls whether analysis highlights render.
	AnnotationsEnabled bool `toml:"annotations_enabled"`
}

// Default returns the settings used when no config file exists.
func Default() Settings {
	return Settings{
		LogLevel: "info",
		Editor: Editor{
			AnalysisDebounceMS:  2000,
			MinCommitIntervalMS: 500,
			MinWordLength:       3,
			InterItemDelayMS:    150,
		},
		Sync: Sync{
			ScrollMargin: 50,
		},
		Services: Services{
			Translator: "anthropic",
			APIKeyEnv:  "VERSEPANE_API_KEY",
		},
	}
}

// Validate checks ranges and cross-field consistency.
func (s *Settings) Validate() error {
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "log_level", Message: "must be debug, info, warn, or error"}
	}
	if s.Editor.AnalysisDebounceMS < 0 {
		return &ValidationError{Field: "editor.analysis_debounce_ms", Message: "must not be negative"}
	}
	if s.Editor.MinCommitIntervalMS < 0 {
		return &ValidationError{Field: "editor.min_commit_interval_ms", Message: "must not be negative"}
	}
	if s.Editor.MinWordLength < 1 {
		return &ValidationError{Field: "editor.min_word_length", Message: "must be at least 1"}
	}
	if s.Sync.ScrollMargin < 0 {
		return &ValidationError{Field: "sync.scroll_margin", Message: "must not be negative"}
	}

	primaries := 0
	seen := make(map[string]bool, len(s.Panes))
	for i, p := range s.Panes {
		if p.ID == "" {
			return &ValidationError{Field: "panes", Message: "pane is missing an id"}
		}
		if seen[p.ID] {
			return &ValidationError{Field: "panes", Message: "duplicate pane id " + p.ID}
		}
		seen[p.ID] = true
		switch p.Role {
		case "primary":
			primaries++
		case "secondary", "":
		default:
			return &ValidationError{Field: "panes", Message: "pane " + p.ID + " has unknown role " + s.Panes[i].Role}
		}
	}
	if primaries > 1 {
		return &ValidationError{Field: "panes", Message: "more than one primary pane"}
	}
	return nil
}

// Pane returns the settings for paneID, if persisted.
func (s *Settings) Pane(paneID string) (PaneSettings, bool) {
	for _, p := range s.Panes {
		if p.ID == paneID {
			return p, true
		}
	}
	return PaneSettings{}, false
}

// SetPane inserts or replaces one pane's settings.
func (s *Settings) SetPane(ps PaneSettings) {
	for i, p := range s.Panes {
		if p.ID == ps.ID {
			s.Panes[i] = ps
			return
		}
	}
	s.Panes = append(s.Panes, ps)
}

// AnalysisDebounce returns the debounce as a duration.
func (s *Settings) AnalysisDebounce() time.Duration {
	return time.Duration(s.Editor.AnalysisDebounceMS) * time.Millisecond
}

// MinCommitInterval returns the commit spacing as a duration.
func (s *Settings) MinCommitInterval() time.Duration {
	return time.Duration(s.Editor.MinCommitIntervalMS) * time.Millisecond
}

// InterItemDelay returns the batch pacing as a duration.
func (s *Settings) InterItemDelay() time.Duration {
	return time.Duration(s.Editor.InterItemDelayMS) * time.Millisecond
}
