package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
)

// Library resolves verse locations and loads chapters from a remote text
// store into panes.
//
// Wire contract:
//
//	POST /locate   {"verse_index"}                 -> {"book", "chapter"}
//	POST /chapter  {"book", "chapter", "resource"} -> {"verses": [{"index",
//	               "reference", "text"}]}
//
// LoadChapter fetches the chapter in the target pane's resource, so two
// panes showing different translations load different text for the same
// location.
type Library struct {
	client   *Client
	registry *pane.Registry
}

// NewLibrary creates a chapter loader backed by the service at baseURL.
// Loaded chapters are delivered to panes through registry.
func NewLibrary(baseURL string, registry *pane.Registry, opts ...ClientOption) (*Library, error) {
	c, err := NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Library{client: c, registry: registry}, nil
}

// ResolveVerseLocation implements service.ChapterLoader.
func (l *Library) ResolveVerseLocation(ctx context.Context, verseIndex int) (service.VerseLocation, error) {
	body, _ := sjson.SetBytes(nil, "verse_index", verseIndex)
	data, err := l.client.postJSON(ctx, "/locate", body)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return service.VerseLocation{}, service.ErrVerseNotFound
		}
		return service.VerseLocation{}, &service.CallError{Service: "library", Op: "locate", Err: err}
	}
	loc := service.VerseLocation{
		Book:    gjson.GetBytes(data, "book").String(),
		Chapter: int(gjson.GetBytes(data, "chapter").Int()),
	}
	if loc.Book == "" {
		return service.VerseLocation{}, &service.CallError{
			Service: "library", Op: "locate",
			Err: fmt.Errorf("verse %d resolved to an empty book", verseIndex),
		}
	}
	return loc, nil
}

// LoadChapter implements service.ChapterLoader.
func (l *Library) LoadChapter(ctx context.Context, paneID string, loc service.VerseLocation) error {
	p, ok := l.registry.Get(paneID)
	if !ok {
		return &service.CallError{Service: "library", Op: "load", Err: pane.ErrPaneNotFound}
	}

	body, _ := sjson.SetBytes(nil, "book", loc.Book)
	body, _ = sjson.SetBytes(body, "chapter", loc.Chapter)
	body, _ = sjson.SetBytes(body, "resource", p.Resource)

	data, err := l.client.postJSON(ctx, "/chapter", body)
	if err != nil {
		return &service.CallError{Service: "library", Op: "load", Err: err}
	}

	var verses []pane.Verse
	gjson.GetBytes(data, "verses").ForEach(func(_, raw gjson.Result) bool {
		verses = append(verses, pane.Verse{
			Index:     int(raw.Get("index").Int()),
			Reference: raw.Get("reference").String(),
			Text:      raw.Get("text").String(),
		})
		return true
	})
	p.LoadVerses(verses)
	return nil
}
