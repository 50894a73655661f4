package remote

import (
	"context"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/versetool/versepane/internal/service"
)

// Dictionary manages the project word list on a remote service.
//
// Wire contract:
//
//	POST /words          {"word"}  ->  {"added": bool}
//	POST /words/similar  {"word"}  ->  {"words": ["...", ...]}
type Dictionary struct {
	client *Client
}

// NewDictionary creates a dictionary backed by the service at baseURL.
func NewDictionary(baseURL string, opts ...ClientOption) (*Dictionary, error) {
	c, err := NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Dictionary{client: c}, nil
}

// AddWord implements service.Dictionary.
func (d *Dictionary) AddWord(ctx context.Context, word string) (bool, error) {
	if word == "" {
		return false, &service.CallError{Service: "dictionary", Op: "add", Err: service.ErrEmptyText}
	}
	body, _ := sjson.SetBytes(nil, "word", word)
	data, err := d.client.postJSON(ctx, "/words", body)
	if err != nil {
		return false, &service.CallError{Service: "dictionary", Op: "add", Err: err}
	}
	return gjson.GetBytes(data, "added").Bool(), nil
}

// SuggestSimilar implements service.Dictionary.
func (d *Dictionary) SuggestSimilar(ctx context.Context, word string) ([]string, error) {
	if word == "" {
		return nil, &service.CallError{Service: "dictionary", Op: "similar", Err: service.ErrEmptyText}
	}
	body, _ := sjson.SetBytes(nil, "word", word)
	data, err := d.client.postJSON(ctx, "/words/similar", body)
	if err != nil {
		return nil, &service.CallError{Service: "dictionary", Op: "similar", Err: err}
	}
	var words []string
	for _, w := range gjson.GetBytes(data, "words").Array() {
		words = append(words, w.String())
	}
	return words, nil
}
