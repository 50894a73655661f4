package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if s.LogLevel != want.LogLevel || s.Editor != want.Editor || s.Sync != want.Sync {
		t.Errorf("missing file did not yield defaults: %+v", s)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	body := `
log_level = "debug"

[editor]
analysis_debounce_ms = 3000

[[panes]]
id = "main"
role = "primary"
resource = "web"
sync_enabled = true
annotations_enabled = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", s.LogLevel)
	}
	if s.Editor.AnalysisDebounceMS != 3000 {
		t.Errorf("AnalysisDebounceMS = %d, want 3000", s.Editor.AnalysisDebounceMS)
	}
	// Keys absent from the file keep defaults.
	if s.Editor.MinWordLength != 3 {
		t.Errorf("MinWordLength = %d, want default 3", s.Editor.MinWordLength)
	}
	if s.Sync.ScrollMargin != 50 {
		t.Errorf("ScrollMargin = %d, want default 50", s.Sync.ScrollMargin)
	}

	p, ok := s.Pane("main")
	if !ok {
		t.Fatal("pane main not loaded")
	}
	if !p.SyncEnabled || !p.AnnotationsEnabled || p.Role != "primary" {
		t.Errorf("pane = %+v", p)
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("log_level = \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Errorf("err = %v, want *ParseError", err)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte(`log_level = "loud"`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Field != "log_level" {
		t.Errorf("Field = %q", verr.Field)
	}
}

func TestValidatePanes(t *testing.T) {
	s := Default()
	s.Panes = []PaneSettings{
		{ID: "a", Role: "primary"},
		{ID: "b", Role: "primary"},
	}
	if err := s.Validate(); err == nil {
		t.Error("two primaries passed validation")
	}

	s.Panes = []PaneSettings{{ID: "a"}, {ID: "a"}}
	if err := s.Validate(); err == nil {
		t.Error("duplicate pane ids passed validation")
	}

	s.Panes = []PaneSettings{{ID: "a", Role: "primary"}, {ID: "b"}}
	if err := s.Validate(); err != nil {
		t.Errorf("valid panes rejected: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")

	s := Default()
	s.LogLevel = "warn"
	s.Services.AnalyzerURL = "http://localhost:9000/analyze"
	s.SetPane(PaneSettings{ID: "ref-1", Role: "secondary", Resource: "kjv", SyncEnabled: true})
	s.SetPane(PaneSettings{ID: "ref-1", Role: "secondary", Resource: "kjv", SyncEnabled: false})

	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.LogLevel != "warn" || got.Services.AnalyzerURL != s.Services.AnalyzerURL {
		t.Errorf("round trip lost fields: %+v", got)
	}
	p, ok := got.Pane("ref-1")
	if !ok {
		t.Fatal("pane ref-1 missing after round trip")
	}
	if p.SyncEnabled {
		t.Error("SetPane did not replace the existing entry")
	}
	if len(got.Panes) != 1 {
		t.Errorf("pane count = %d, want 1", len(got.Panes))
	}
}

func TestWatcherReloadsOnAtomicSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var mu sync.Mutex
	var got []Settings
	reloaded := make(chan struct{}, 4)

	w, err := NewWatcher(path, 20*time.Millisecond, func(s Settings, err error) {
		if err != nil {
			t.Errorf("reload error: %v", err)
			return
		}
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
		reloaded <- struct{}{}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	s := Default()
	s.LogLevel = "error"
	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	mu.Lock()
	defer mu.Unlock()
	last := got[len(got)-1]
	if last.LogLevel != "error" {
		t.Errorf("reloaded LogLevel = %q, want error", last.LogLevel)
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	w, err := NewWatcher(path, 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close = %v, want ErrWatcherClosed", err)
	}
}
