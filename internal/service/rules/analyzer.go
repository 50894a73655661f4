package rules

import (
	"context"
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/versetool/versepane/internal/service"
)

// Logger is the logging surface the analyzer needs. *app.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Options configures an Analyzer.
type Options struct {
	// Script is the rules script source. Takes precedence over Path.
	Script string

	// Path is a file to load the script from when Script is empty.
	Path string

	// Log receives diagnostics for dropped suggestions. Defaults to a
	// no-op logger.
	Log Logger
}

type call struct {
	fn     func(L *lua.LState) error
	result chan error
}

// Analyzer implements service.Analyzer by delegating to a Lua script.
type Analyzer struct {
	calls chan call
	log   Logger

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}
}

// NewAnalyzer loads the script and starts the interpreter goroutine. The
// returned analyzer must be shut down with Close.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	src := opts.Script
	if src == "" && opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("reading rules script %s: %w", opts.Path, err)
		}
		src = string(data)
	}
	if src == "" {
		return nil, ErrNoScript
	}
	if opts.Log == nil {
		opts.Log = nopLogger{}
	}

	L := newSandboxedState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, &ScriptError{Op: "load", Err: err}
	}
	if _, ok := L.GetGlobal("analyze").(*lua.LFunction); !ok {
		L.Close()
		return nil, ErrNoAnalyzeFunction
	}

	a := &Analyzer{
		calls:   make(chan call),
		log:     opts.Log,
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go a.loop(L)
	return a, nil
}

// loop owns the interpreter state. It is the only goroutine that touches L.
func (a *Analyzer) loop(L *lua.LState) {
	defer close(a.done)
	defer L.Close()
	for {
		select {
		case <-a.closing:
			return
		case c := <-a.calls:
			c.result <- runGuarded(L, c.fn)
		}
	}
}

func runGuarded(L *lua.LState, fn func(*lua.LState) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panic: %v", r)
		}
	}()
	return fn(L)
}

// Close shuts down the interpreter. Calls in flight complete first.
func (a *Analyzer) Close() {
	a.closeOnce.Do(func() {
		close(a.closing)
		<-a.done
	})
}

// Analyze implements service.Analyzer.
func (a *Analyzer) Analyze(ctx context.Context, paneID string, verseIndex int, text string) (service.AnalysisResult, error) {
	var res service.AnalysisResult
	c := call{
		result: make(chan error, 1),
		fn: func(L *lua.LState) error {
			var err error
			res, err = a.invoke(L, paneID, verseIndex, text)
			return err
		},
	}

	select {
	case a.calls <- c:
	case <-a.closing:
		return service.AnalysisResult{}, ErrClosed
	case <-ctx.Done():
		return service.AnalysisResult{}, ctx.Err()
	}

	select {
	case err := <-c.result:
		if err != nil {
			return service.AnalysisResult{}, err
		}
		return res, nil
	case <-ctx.Done():
		return service.AnalysisResult{}, ctx.Err()
	}
}

func (a *Analyzer) invoke(L *lua.LState, paneID string, verseIndex int, text string) (service.AnalysisResult, error) {
	L.Push(L.GetGlobal("analyze"))
	L.Push(lua.LString(text))
	L.Push(lua.LNumber(verseIndex))
	L.Push(lua.LString(paneID))
	if err := L.PCall(3, 1, nil); err != nil {
		return service.AnalysisResult{}, &ScriptError{Op: "analyze", Err: err}
	}
	ret := L.Get(-1)
	L.Pop(1)

	var res service.AnalysisResult
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		// nil or a non-table return means no findings.
		return res, nil
	}

	runes := []rune(text)
	for i := 1; i <= tbl.Len(); i++ {
		raw, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			a.log.Warn("rules: suggestion is not a table", "index", i)
			continue
		}
		s, ok := a.decodeSuggestion(raw, runes)
		if !ok {
			continue
		}
		res.Suggestions = append(res.Suggestions, s)
	}
	return res, nil
}

// decodeSuggestion converts one Lua suggestion table, dropping entries
// whose offsets do not address the analyzed text.
func (a *Analyzer) decodeSuggestion(raw *lua.LTable, runes []rune) (service.Suggestion, bool) {
	start := int(lua.LVAsNumber(raw.RawGetString("start")))
	stop := int(lua.LVAsNumber(raw.RawGetString("stop")))
	if start < 0 || stop <= start || stop > len(runes) {
		a.log.Warn("rules: suggestion offsets out of range", "start", start, "stop", stop)
		return service.Suggestion{}, false
	}

	sev := service.SeverityHint
	switch lua.LVAsString(raw.RawGetString("severity")) {
	case "hint", "":
	case "warning":
		sev = service.SeverityWarning
	case "error":
		sev = service.SeverityError
	default:
		a.log.Warn("rules: unknown severity", "severity", lua.LVAsString(raw.RawGetString("severity")))
		return service.Suggestion{}, false
	}

	s := service.Suggestion{
		Start:     start,
		End:       stop,
		Substring: string(runes[start:stop]),
		Message:   lua.LVAsString(raw.RawGetString("message")),
		Severity:  sev,
	}
	if alts, ok := raw.RawGetString("alternatives").(*lua.LTable); ok {
		for j := 1; j <= alts.Len(); j++ {
			s.Alternatives = append(s.Alternatives, lua.LVAsString(alts.RawGetInt(j)))
		}
	}
	return s, true
}
