package remote

import (
	"context"

	"github.com/tidwall/sjson"

	"github.com/versetool/versepane/internal/service"
)

// Autosave persists committed verse text to a remote store.
//
// Wire contract, POST /commit:
//
//	{"pane_id", "verse_index", "text", "metadata": {...}}
//
// The response body is ignored; any 2xx status is a successful commit.
type Autosave struct {
	client *Client
}

// NewAutosave creates an autosave bridge backed by the service at baseURL.
func NewAutosave(baseURL string, opts ...ClientOption) (*Autosave, error) {
	c, err := NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Autosave{client: c}, nil
}

// Commit implements service.AutosaveBridge.
func (a *Autosave) Commit(ctx context.Context, verseIndex int, paneID string, text string, metadata map[string]string) error {
	body, _ := sjson.SetBytes(nil, "pane_id", paneID)
	body, _ = sjson.SetBytes(body, "verse_index", verseIndex)
	body, _ = sjson.SetBytes(body, "text", text)
	for k, v := range metadata {
		body, _ = sjson.SetBytes(body, "metadata."+k, v)
	}
	if _, err := a.client.postJSON(ctx, "/commit", body); err != nil {
		return &service.CallError{Service: "autosave", Op: "commit", Err: err}
	}
	return nil
}
