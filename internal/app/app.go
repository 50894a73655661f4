package app

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/versetool/versepane/internal/collect"
	"github.com/versetool/versepane/internal/config"
	"github.com/versetool/versepane/internal/event"
	"github.com/versetool/versepane/internal/overlay"
	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
	"github.com/versetool/versepane/internal/service/remote"
	"github.com/versetool/versepane/internal/service/rules"
	"github.com/versetool/versepane/internal/service/translate"
	"github.com/versetool/versepane/internal/term"
	"github.com/versetool/versepane/internal/versesync"
)

// settingsApplyTimeout bounds the catch-up syncs a config reload can trigger.
const settingsApplyTimeout = 10 * time.Second

// Application is the central coordinator for all versepane components.
type Application struct {
	log      *Logger
	settings config.Settings

	bus      *event.Bus
	registry *pane.Registry

	engine      *overlay.Engine
	coordinator *versesync.Coordinator
	collector   *collect.Collector
	deliverer   *collect.Deliverer

	backend  term.Backend
	renderer *term.Renderer

	watcher       *config.Watcher
	rulesAnalyzer *rules.Analyzer

	// focusKey names the cell holding edit focus. Owned by the event loop
	// goroutine; no lock.
	focusKey overlay.Key
	focused  bool

	running atomic.Bool
	done    chan struct{}
	redraw  chan struct{}

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the settings file. Empty uses config.DefaultPath.
	ConfigPath string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogOutput overrides stderr as the log destination.
	LogOutput *os.File

	// Backend overrides the terminal backend, for tests.
	Backend term.Backend

	// Analyzer, Dictionary, Translator, Bridge, and Loader override the
	// collaborators built from configuration, for tests and embedding.
	Analyzer   service.Analyzer
	Dictionary service.Dictionary
	Translator service.Translator
	Bridge     service.AutosaveBridge
	Loader     service.ChapterLoader
}

// New creates an application and initializes all components in dependency
// order.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:   opts,
		done:   make(chan struct{}),
		redraw: make(chan struct{}, 1),
	}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	// Settings first: nearly everything below is paced or pointed by them.
	path := app.opts.ConfigPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	settings, err := config.Load(path)
	if err != nil {
		// Defaults were returned alongside the error; the app still starts.
		settings = config.Default()
	}
	app.settings = settings

	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(settings.LogLevel)
	if app.opts.LogLevel != "" {
		logCfg.Level = ParseLogLevel(app.opts.LogLevel)
	}
	if app.opts.LogOutput != nil {
		logCfg.Output = app.opts.LogOutput
	}
	app.log = NewLogger(logCfg)
	if err != nil {
		app.log.Warn("config load failed, using defaults", "path", path, "error", err)
	}

	app.bus = event.NewBus()
	app.registry = pane.NewRegistry(app.bus)

	bridge, err := app.buildBridge()
	if err != nil {
		return &InitError{Component: "autosave bridge", Err: err}
	}
	if err := app.openConfiguredPanes(bridge); err != nil {
		return &InitError{Component: "panes", Err: err}
	}

	analyzer, err := app.buildAnalyzer()
	if err != nil {
		return &InitError{Component: "analyzer", Err: err}
	}
	dictionary, err := app.buildDictionary()
	if err != nil {
		return &InitError{Component: "dictionary", Err: err}
	}

	app.engine, err = overlay.NewEngine(overlay.Options{
		Analyzer:      analyzer,
		Dictionary:    dictionary,
		Registry:      app.registry,
		Bus:           app.bus,
		Log:           app.log.WithComponent("overlay"),
		Debounce:      settings.AnalysisDebounce(),
		MinWordLength: settings.Editor.MinWordLength,
	})
	if err != nil {
		return &InitError{Component: "overlay engine", Err: err}
	}
	for _, p := range app.registry.List() {
		app.engine.AttachPane(p)
		if ps, ok := settings.Pane(p.ID); ok && !ps.AnnotationsEnabled {
			app.engine.SetPaneEnabled(p.ID, false)
		}
	}

	loader, err := app.buildLoader()
	if err != nil {
		return &InitError{Component: "chapter loader", Err: err}
	}
	app.coordinator, err = versesync.New(versesync.Options{
		Registry:     app.registry,
		Loader:       loader,
		Bus:          app.bus,
		Log:          app.log.WithComponent("sync"),
		ScrollMargin: settings.Sync.ScrollMargin,
	})
	if err != nil {
		return &InitError{Component: "sync coordinator", Err: err}
	}

	translator, err := app.buildTranslator()
	if err != nil {
		return &InitError{Component: "translator", Err: err}
	}
	// Drag wiring is one-shot per registry lifetime; the registry owns the
	// guard so a re-render can never wire a second collector.
	var dragErr error
	app.registry.SetupDragOnce(func() {
		app.collector = collect.NewCollector()
		app.deliverer, dragErr = collect.NewDeliverer(collect.Options{
			Registry:       app.registry,
			Translator:     translator,
			Bus:            app.bus,
			Log:            app.log.WithComponent("collect"),
			InterItemDelay: settings.InterItemDelay(),
		})
	})
	if dragErr != nil {
		return &InitError{Component: "batch deliverer", Err: dragErr}
	}

	app.backend = app.opts.Backend
	if app.backend == nil {
		backend, err := term.NewTerminal()
		if err != nil {
			return &InitError{Component: "terminal", Err: err}
		}
		app.backend = backend
	}
	app.renderer = term.NewRenderer(app.backend, app.registry, app.engine)

	app.subscribe()
	app.watchConfig(path)
	return nil
}

// openConfiguredPanes registers one pane per configured entry.
func (app *Application) openConfiguredPanes(bridge service.AutosaveBridge) error {
	if len(app.settings.Panes) == 0 {
		return ErrNoPanes
	}
	for _, ps := range app.settings.Panes {
		role := pane.RoleSecondary
		if ps.Role == "primary" {
			role = pane.RolePrimary
		}
		p := pane.New(pane.Config{
			ID:                ps.ID,
			Role:              role,
			Title:             ps.Title,
			Resource:          ps.Resource,
			SyncEnabled:       ps.SyncEnabled,
			MinCommitInterval: app.settings.MinCommitInterval(),
			Bridge:            bridge,
			Bus:               app.bus,
			Log:               app.log.WithComponent("pane"),
		})
		if err := app.registry.Add(p); err != nil {
			return err
		}
	}
	return nil
}

func (app *Application) buildAnalyzer() (service.Analyzer, error) {
	if app.opts.Analyzer != nil {
		return app.opts.Analyzer, nil
	}
	var remoteAnalyzer service.Analyzer
	if url := app.settings.Services.AnalyzerURL; url != "" {
		a, err := remote.NewAnalyzer(url, remote.WithUserAgent("versepane"))
		if err != nil {
			return nil, err
		}
		remoteAnalyzer = a
	}

	if script := app.settings.Services.RulesScript; script != "" {
		local, err := rules.NewAnalyzer(rules.Options{
			Path: script,
			Log:  app.log.WithComponent("rules"),
		})
		if err != nil {
			return nil, err
		}
		app.rulesAnalyzer = local
		if remoteAnalyzer == nil {
			return local, nil
		}
		return &chainAnalyzer{local: local, remote: remoteAnalyzer, log: app.log}, nil
	}

	if remoteAnalyzer == nil {
		// No service configured. Run the built-in rules so editing still
		// gets doubled-word checks offline.
		local, err := rules.NewAnalyzer(rules.Options{
			Script: builtinRules,
			Log:    app.log.WithComponent("rules"),
		})
		if err != nil {
			return nil, err
		}
		app.rulesAnalyzer = local
		return local, nil
	}
	return remoteAnalyzer, nil
}

// builtinRules flags immediately repeated words, a common transcription
// slip. The script reports byte positions, which match rune offsets only
// for ASCII text; a configured analyzer service supersedes it.
const builtinRules = `
function analyze(text, verse_index, pane_id)
	local found = {}
	local prev = nil
	local pos = 1
	while true do
		local s, e, word = string.find(text, "(%S+)", pos)
		if s == nil then break end
		if prev ~= nil and string.lower(word) == string.lower(prev) then
			found[#found + 1] = {
				start = s - 1,
				stop = e,
				message = "repeated word",
				severity = "warning",
			}
		end
		prev = word
		pos = e + 1
	end
	return found
end
`

func (app *Application) buildDictionary() (service.Dictionary, error) {
	if app.opts.Dictionary != nil {
		return app.opts.Dictionary, nil
	}
	url := app.settings.Services.DictionaryURL
	if url == "" {
		return nil, nil
	}
	return remote.NewDictionary(url, remote.WithUserAgent("versepane"))
}

func (app *Application) buildTranslator() (service.Translator, error) {
	if app.opts.Translator != nil {
		return app.opts.Translator, nil
	}
	key := os.Getenv(app.settings.Services.APIKeyEnv)
	if key == "" {
		app.log.Warn("no translation key in environment", "env", app.settings.Services.APIKeyEnv)
		return unavailableTranslator{}, nil
	}
	return translate.New(app.settings.Services.Translator, translate.Config{
		APIKey: key,
		Model:  app.settings.Services.TranslatorModel,
		ResourceFor: func(paneID string) string {
			if p, ok := app.registry.Get(paneID); ok {
				return p.Resource
			}
			return ""
		},
	})
}

func (app *Application) buildBridge() (service.AutosaveBridge, error) {
	if app.opts.Bridge != nil {
		return app.opts.Bridge, nil
	}
	if url := app.settings.Services.AutosaveURL; url != "" {
		return remote.NewAutosave(url, remote.WithUserAgent("versepane"))
	}
	return &logBridge{log: app.log.WithComponent("autosave")}, nil
}

func (app *Application) buildLoader() (service.ChapterLoader, error) {
	if app.opts.Loader != nil {
		return app.opts.Loader, nil
	}
	if url := app.settings.Services.LibraryURL; url != "" {
		return remote.NewLibrary(url, app.registry, remote.WithUserAgent("versepane"))
	}
	return nil, nil
}

// watchConfig starts live reload for the settings file. Failure to watch
// is logged, not fatal.
func (app *Application) watchConfig(path string) {
	if path == "" {
		return
	}
	w, err := config.NewWatcher(path, config.DefaultReloadDebounce, app.applySettings)
	if err != nil {
		app.log.Warn("config watch unavailable", "path", path, "error", err)
		return
	}
	app.watcher = w
}

// applySettings applies a reloaded configuration to the live components.
// Only dynamic settings change at runtime; pane topology edits need a
// restart.
func (app *Application) applySettings(s config.Settings, err error) {
	if err != nil {
		app.log.Warn("config reload rejected", "error", err)
		return
	}
	app.log.SetLevel(ParseLogLevel(s.LogLevel))
	ctx, cancel := context.WithTimeout(context.Background(), settingsApplyTimeout)
	defer cancel()
	for _, ps := range s.Panes {
		p, ok := app.registry.Get(ps.ID)
		if !ok {
			continue
		}
		// Sync toggles run through the coordinator so a re-enabled pane
		// catches up to the last synced verse.
		if p.SyncEnabled() != ps.SyncEnabled {
			app.coordinator.SetCatchUp(ctx, p, ps.SyncEnabled)
		}
		app.engine.SetPaneEnabled(ps.ID, ps.AnnotationsEnabled)
	}
	app.settings = s
	app.requestRedraw()
	app.log.Info("configuration reloaded")
}

// Registry exposes the pane registry.
func (app *Application) Registry() *pane.Registry { return app.registry }

// Engine exposes the overlay engine.
func (app *Application) Engine() *overlay.Engine { return app.engine }

// Coordinator exposes the sync coordinator.
func (app *Application) Coordinator() *versesync.Coordinator { return app.coordinator }

// Bus exposes the event bus.
func (app *Application) Bus() *event.Bus { return app.bus }

// Log exposes the root logger.
func (app *Application) Log() *Logger { return app.log }

// Settings returns the active settings.
func (app *Application) Settings() config.Settings { return app.settings }

// requestRedraw coalesces redraw requests.
func (app *Application) requestRedraw() {
	select {
	case app.redraw <- struct{}{}:
	default:
	}
}

// Shutdown releases resources. Safe to call once after Run returns, or
// instead of Run when the application never started.
func (app *Application) Shutdown() {
	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	if app.rulesAnalyzer != nil {
		app.rulesAnalyzer.Close()
	}
	for _, p := range app.registry.List() {
		app.engine.ClosePane(p.ID)
	}
	app.log.Info("shutdown complete")
}
