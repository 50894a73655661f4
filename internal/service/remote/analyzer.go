package remote

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/versetool/versepane/internal/service"
)

// Analyzer checks verse text against a remote consistency service.
//
// Wire contract, POST /analyze:
//
//	request:  {"pane_id", "verse_index", "text"}
//	response: {"suggestions": [{"start", "end", "substring", "message",
//	           "severity", "alternatives"}]}
//
// Offsets are rune offsets, half-open.
type Analyzer struct {
	client *Client
}

// NewAnalyzer creates an analyzer backed by the service at baseURL.
func NewAnalyzer(baseURL string, opts ...ClientOption) (*Analyzer, error) {
	c, err := NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Analyzer{client: c}, nil
}

// Analyze implements service.Analyzer.
func (a *Analyzer) Analyze(ctx context.Context, paneID string, verseIndex int, text string) (service.AnalysisResult, error) {
	body, _ := sjson.SetBytes(nil, "pane_id", paneID)
	body, _ = sjson.SetBytes(body, "verse_index", verseIndex)
	body, _ = sjson.SetBytes(body, "text", text)

	data, err := a.client.postJSON(ctx, "/analyze", body)
	if err != nil {
		return service.AnalysisResult{}, &service.CallError{Service: "analysis", Op: "analyze", Err: err}
	}

	var res service.AnalysisResult
	var parseErr error
	gjson.GetBytes(data, "suggestions").ForEach(func(_, raw gjson.Result) bool {
		s := service.Suggestion{
			Start:     int(raw.Get("start").Int()),
			End:       int(raw.Get("end").Int()),
			Substring: raw.Get("substring").String(),
			Message:   raw.Get("message").String(),
		}
		sev, err := parseSeverity(raw.Get("severity").String())
		if err != nil {
			parseErr = err
			return false
		}
		s.Severity = sev
		for _, alt := range raw.Get("alternatives").Array() {
			s.Alternatives = append(s.Alternatives, alt.String())
		}
		res.Suggestions = append(res.Suggestions, s)
		return true
	})
	if parseErr != nil {
		return service.AnalysisResult{}, &service.CallError{Service: "analysis", Op: "analyze", Err: parseErr}
	}
	return res, nil
}

func parseSeverity(s string) (service.Severity, error) {
	switch s {
	case "hint", "":
		return service.SeverityHint, nil
	case "warning":
		return service.SeverityWarning, nil
	case "error":
		return service.SeverityError, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}
