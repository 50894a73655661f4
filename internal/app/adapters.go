package app

import (
	"context"

	"github.com/versetool/versepane/internal/service"
)

// chainAnalyzer runs the local Lua rules before the remote analyzer and
// merges their findings, local first. One side failing degrades to the
// other side's findings; both failing is an error.
type chainAnalyzer struct {
	local  service.Analyzer
	remote service.Analyzer
	log    *Logger
}

// Analyze implements service.Analyzer.
func (c *chainAnalyzer) Analyze(ctx context.Context, paneID string, verseIndex int, text string) (service.AnalysisResult, error) {
	var merged service.AnalysisResult

	localRes, localErr := c.local.Analyze(ctx, paneID, verseIndex, text)
	if localErr != nil {
		c.log.Warn("rules analysis failed", "pane", paneID, "verse", verseIndex, "error", localErr)
	} else {
		merged.Suggestions = append(merged.Suggestions, localRes.Suggestions...)
	}

	remoteRes, remoteErr := c.remote.Analyze(ctx, paneID, verseIndex, text)
	if remoteErr != nil {
		if localErr != nil {
			return service.AnalysisResult{}, remoteErr
		}
		c.log.Warn("remote analysis failed", "pane", paneID, "verse", verseIndex, "error", remoteErr)
		return merged, nil
	}
	merged.Suggestions = append(merged.Suggestions, remoteRes.Suggestions...)
	return merged, nil
}

// unavailableTranslator rejects every call. Installed when no provider is
// configured so batch drops fail per item instead of crashing.
type unavailableTranslator struct{}

// Translate implements service.Translator.
func (unavailableTranslator) Translate(context.Context, service.TranslateRequest) (string, error) {
	return "", service.ErrNoProvider
}

// logBridge records commits to the log only. Installed when no autosave
// endpoint is configured, which keeps the blur-commit path exercised in
// offline sessions.
type logBridge struct {
	log *Logger
}

// Commit implements service.AutosaveBridge.
func (b *logBridge) Commit(_ context.Context, verseIndex int, paneID string, text string, _ map[string]string) error {
	b.log.Debug("commit (no autosave endpoint)", "pane", paneID, "verse", verseIndex, "bytes", len(text))
	return nil
}
