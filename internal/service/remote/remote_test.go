package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
)

func TestAnalyzerDecodesSuggestions(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{
			"suggestions": [
				{"start": 4, "end": 9, "substring": "Logos", "message": "unknown word",
				 "severity": "warning", "alternatives": ["Logo", "Logic"]},
				{"start": 12, "end": 15, "substring": "teh", "message": "misspelling",
				 "severity": "error"}
			]
		}`)
	}))
	defer srv.Close()

	a, err := NewAnalyzer(srv.URL)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	res, err := a.Analyze(context.Background(), "main", 7, "the Logos is teh way")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if gjson.GetBytes(gotBody, "pane_id").String() != "main" {
		t.Errorf("request pane_id = %s", gotBody)
	}
	if gjson.GetBytes(gotBody, "verse_index").Int() != 7 {
		t.Errorf("request verse_index = %s", gotBody)
	}

	if len(res.Suggestions) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(res.Suggestions))
	}
	first := res.Suggestions[0]
	if first.Start != 4 || first.End != 9 || first.Substring != "Logos" {
		t.Errorf("first = %+v", first)
	}
	if first.Severity != service.SeverityWarning {
		t.Errorf("first severity = %v", first.Severity)
	}
	if len(first.Alternatives) != 2 || first.Alternatives[0] != "Logo" {
		t.Errorf("alternatives = %v", first.Alternatives)
	}
	if res.Suggestions[1].Severity != service.SeverityError {
		t.Errorf("second severity = %v", res.Suggestions[1].Severity)
	}
}

func TestAnalyzerRejectsUnknownSeverity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"suggestions": [{"start": 0, "end": 1, "severity": "fatal"}]}`)
	}))
	defer srv.Close()

	a, _ := NewAnalyzer(srv.URL)
	_, err := a.Analyze(context.Background(), "main", 1, "x")
	if err == nil {
		t.Fatal("unknown severity accepted")
	}
	var ce *service.CallError
	if !errors.As(err, &ce) || ce.Service != "analysis" {
		t.Errorf("err = %v, want analysis CallError", err)
	}
}

func TestAnalyzerStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error": "upstream busy"}`)
	}))
	defer srv.Close()

	a, _ := NewAnalyzer(srv.URL)
	_, err := a.Analyze(context.Background(), "main", 1, "x")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Code != http.StatusBadGateway || se.Message != "upstream busy" {
		t.Errorf("status error = %+v", se)
	}
}

func TestDictionaryAddWord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/words":
			if gjson.GetBytes(body, "word").String() == "known" {
				io.WriteString(w, `{"added": false}`)
				return
			}
			io.WriteString(w, `{"added": true}`)
		case "/words/similar":
			io.WriteString(w, `{"words": ["logos", "logo"]}`)
		default:
			t.Errorf("path = %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	d, err := NewDictionary(srv.URL)
	if err != nil {
		t.Fatalf("NewDictionary: %v", err)
	}

	added, err := d.AddWord(context.Background(), "logos")
	if err != nil || !added {
		t.Errorf("AddWord new = (%v, %v), want (true, nil)", added, err)
	}
	added, err = d.AddWord(context.Background(), "known")
	if err != nil || added {
		t.Errorf("AddWord known = (%v, %v), want (false, nil)", added, err)
	}
	if _, err := d.AddWord(context.Background(), ""); !errors.Is(err, service.ErrEmptyText) {
		t.Errorf("AddWord empty = %v, want ErrEmptyText", err)
	}

	words, err := d.SuggestSimilar(context.Background(), "logs")
	if err != nil {
		t.Fatalf("SuggestSimilar: %v", err)
	}
	if len(words) != 2 || words[0] != "logos" {
		t.Errorf("words = %v", words)
	}
}

func TestAutosaveCommit(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/commit" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a, err := NewAutosave(srv.URL)
	if err != nil {
		t.Fatalf("NewAutosave: %v", err)
	}
	err = a.Commit(context.Background(), 12, "main", "In the beginning", map[string]string{"source": "blur"})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if gjson.GetBytes(gotBody, "verse_index").Int() != 12 {
		t.Errorf("body = %s", gotBody)
	}
	if gjson.GetBytes(gotBody, "metadata.source").String() != "blur" {
		t.Errorf("metadata not sent: %s", gotBody)
	}
}

func TestLibraryResolveAndLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/locate":
			if gjson.GetBytes(body, "verse_index").Int() == 99999 {
				w.WriteHeader(http.StatusNotFound)
				io.WriteString(w, `{"error": "no such verse"}`)
				return
			}
			io.WriteString(w, `{"book": "John", "chapter": 3}`)
		case "/chapter":
			if got := gjson.GetBytes(body, "resource").String(); got != "kjv" {
				t.Errorf("resource = %q, want kjv", got)
			}
			io.WriteString(w, `{"verses": [
				{"index": 201, "reference": "John 3:1", "text": "first"},
				{"index": 202, "reference": "John 3:2", "text": "second"}
			]}`)
		default:
			t.Errorf("path = %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	reg := pane.NewRegistry(nil)
	p := pane.New(pane.Config{ID: "ref", Role: pane.RoleSecondary, Resource: "kjv"})
	if err := reg.Add(p); err != nil {
		t.Fatal(err)
	}

	lib, err := NewLibrary(srv.URL, reg)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}

	loc, err := lib.ResolveVerseLocation(context.Background(), 201)
	if err != nil {
		t.Fatalf("ResolveVerseLocation: %v", err)
	}
	if loc.Book != "John" || loc.Chapter != 3 {
		t.Errorf("loc = %+v", loc)
	}

	if _, err := lib.ResolveVerseLocation(context.Background(), 99999); !errors.Is(err, service.ErrVerseNotFound) {
		t.Errorf("missing verse err = %v, want ErrVerseNotFound", err)
	}

	if err := lib.LoadChapter(context.Background(), "ref", loc); err != nil {
		t.Fatalf("LoadChapter: %v", err)
	}
	cell, ok := p.CellAt(202)
	if !ok {
		t.Fatal("verse 202 not loaded")
	}
	if cell.Value() != "second" {
		t.Errorf("verse 202 text = %q", cell.Value())
	}

	if err := lib.LoadChapter(context.Background(), "ghost", loc); err == nil {
		t.Error("unknown pane accepted")
	}
}
