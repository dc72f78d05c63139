// Package rest reshapes upstream GraphQL results into REST envelopes.
package rest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/upstream"
)

// Meta describes how a response was produced.
type Meta struct {
	ContentType   string `json:"contentType"`
	ExecutionTime int64  `json:"executionTime"`
}

// Response is the REST envelope. Absent upstream keys stay absent.
type Response struct {
	Items        json.RawMessage `json:"items,omitempty"`
	Item         json.RawMessage `json:"item,omitempty"`
	Total        json.RawMessage `json:"total,omitempty"`
	Cursor       json.RawMessage `json:"cursor,omitempty"`
	Facets       json.RawMessage `json:"facets,omitempty"`
	Autocomplete json.RawMessage `json:"autocomplete,omitempty"`
	Meta         Meta            `json:"meta"`
}

// Format extracts data.<contentType> from res. Upstream errors are classified
// from the first error; a missing or null key is NotFound.
func Format(res *ports.Result, contentType string, elapsed time.Duration) (*Response, error) {
	if len(res.Errors) > 0 {
		return nil, upstream.Classify(res.Errors)
	}

	data := gjson.GetBytes(res.Data, gjson.Escape(contentType))
	if !data.Exists() || data.Type == gjson.Null {
		return nil, &upstream.Error{
			Kind:    errs.ErrNotFound,
			Message: fmt.Sprintf("No data returned for content type: %s", contentType),
		}
	}

	resp := &Response{Meta: Meta{ContentType: contentType, ExecutionTime: elapsed.Milliseconds()}}
	for key, dst := range map[string]*json.RawMessage{
		"items":        &resp.Items,
		"item":         &resp.Item,
		"total":        &resp.Total,
		"cursor":       &resp.Cursor,
		"facets":       &resp.Facets,
		"autocomplete": &resp.Autocomplete,
	} {
		if v := data.Get(key); v.Exists() {
			*dst = json.RawMessage(v.Raw)
		}
	}
	return resp, nil
}

// HasItem reports whether item is present and not null.
func (r *Response) HasItem() bool {
	return len(r.Item) > 0 && gjson.ParseBytes(r.Item).Type != gjson.Null
}

// PromoteFirst sets Item to the first element of Items. It reports false when
// Items is absent or empty.
func (r *Response) PromoteFirst() bool {
	first := gjson.GetBytes(r.Items, "0")
	if !first.Exists() {
		return false
	}
	r.Item = json.RawMessage(first.Raw)
	return true
}
