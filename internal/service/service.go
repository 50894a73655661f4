package service

import "context"

// Severity classifies how strongly a suggestion should be surfaced.
type Severity int

const (
	// SeverityHint marks stylistic suggestions.
	SeverityHint Severity = iota
	// SeverityWarning marks probable spelling or consistency problems.
	SeverityWarning
	// SeverityError marks words the analysis is confident are wrong.
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityHint:
		return "hint"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Suggestion is one highlighted range produced by an analysis pass.
//
// Start and End are half-open rune offsets into the plain text the analysis
// was computed against. Any edit to that text invalidates the offsets; the
// engine never repairs them incrementally and instead waits for a fresh
// analysis.
type Suggestion struct {
	// Start is the inclusive rune offset where the range begins.
	Start int

	// End is the exclusive rune offset where the range ends.
	End int

	// Substring is the text covered by [Start, End) at analysis time.
	Substring string

	// Message explains the suggestion to the user.
	Message string

	// Severity controls the highlight styling.
	Severity Severity

	// Alternatives are optional replacement spellings, most likely first.
	Alternatives []string
}

// AnalysisResult is the outcome of analyzing one verse's text.
type AnalysisResult struct {
	// Suggestions are ordered by Start offset.
	Suggestions []Suggestion
}

// Analyzer produces suggestions for a verse's current text.
//
// Calls are correlated to the (pane, verse) that requested them; the engine
// discards results whose source text no longer matches the live value.
type Analyzer interface {
	// Analyze inspects text belonging to verseIndex in the pane identified
	// by paneID and returns zero or more suggestions.
	Analyze(ctx context.Context, paneID string, verseIndex int, text string) (AnalysisResult, error)
}

// Dictionary learns words the user accepts and proposes close spellings.
type Dictionary interface {
	// AddWord records word as known. Added reports whether the word was new.
	AddWord(ctx context.Context, word string) (added bool, err error)

	// SuggestSimilar returns known words close to word. It is called lazily
	// (on hover), never for every suggestion up front.
	SuggestSimilar(ctx context.Context, word string) ([]string, error)
}

// Translator translates one verse's text between two panes' resources.
type Translator interface {
	// Translate renders sourceText from the source pane's resource into the
	// target pane's resource. Batch deliveries call it once per matched
	// verse, sequentially.
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest identifies one verse translation.
type TranslateRequest struct {
	// SourceText is the text to translate.
	SourceText string

	// SourcePaneID identifies the pane the text came from.
	SourcePaneID string

	// TargetPaneID identifies the pane that will receive the translation.
	TargetPaneID string

	// VerseIndex is the global verse ordering key.
	VerseIndex int

	// Context optionally carries surrounding verses for better output.
	Context string
}

// AutosaveBridge accepts committed text changes.
//
// Errors are surfaced as a transient visual state on the cell; the core does
// not retry automatically.
type AutosaveBridge interface {
	// Commit persists text for verseIndex in paneID. Metadata is opaque to
	// the core and may be nil.
	Commit(ctx context.Context, verseIndex int, paneID string, text string, metadata map[string]string) error
}

// VerseLocation names the chapter a verse index lives in.
type VerseLocation struct {
	// Book is the book identifier.
	Book string

	// Chapter is the chapter number within Book.
	Chapter int
}

// ChapterLoader resolves verse indexes to chapters and loads chapters into
// panes on behalf of the sync coordinator.
type ChapterLoader interface {
	// ResolveVerseLocation maps a global verse index to its book and chapter.
	ResolveVerseLocation(ctx context.Context, verseIndex int) (VerseLocation, error)

	// LoadChapter loads the given chapter into the pane identified by paneID.
	LoadChapter(ctx context.Context, paneID string, loc VerseLocation) error
}
