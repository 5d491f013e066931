package pagination

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed reports an envelope whose data array or pagination cursor is
// missing or has the wrong type. Wrapped errors carry the detail; callers
// match with errors.Is.
var ErrMalformed = errors.New("malformed pagination envelope")

// Envelope is the outer JSON object of every paginated response. Both fields
// stay raw so the cursor and the item array can be extracted independently
// before any typed decoding happens.
type Envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination json.RawMessage `json:"pagination"`
}

// Block is the pagination block inside the envelope.
type Block struct {
	Cursor string `json:"cursor"`
}

// Page is one decoded page: the raw items in upstream order plus the cursor
// for the next request. An empty Cursor means the upstream offered no
// continuation.
type Page struct {
	Items  []json.RawMessage
	Cursor string
}

var jsonNull = []byte("null")

// ParsePage decodes a response body into a Page. The decode happens in two
// phases: the envelope first, then the raw item array into individual raw
// items. Item contents are not interpreted here.
//
// A body that is not valid JSON surfaces the json error unwrapped so callers
// can classify it as a plain deserialization failure. A missing or non-array
// data field and a non-object pagination block or non-string cursor are
// ErrMalformed.
func ParsePage(body []byte) (Page, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Page{}, err
	}

	if len(env.Data) == 0 || bytes.Equal(env.Data, jsonNull) {
		return Page{}, fmt.Errorf("%w: missing data array", ErrMalformed)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return Page{}, fmt.Errorf("%w: data is not an array: %v", ErrMalformed, err)
	}

	page := Page{Items: items}

	if len(env.Pagination) > 0 && !bytes.Equal(env.Pagination, jsonNull) {
		var block Block
		if err := json.Unmarshal(env.Pagination, &block); err != nil {
			return Page{}, fmt.Errorf("%w: cursor is not a string: %v", ErrMalformed, err)
		}
		page.Cursor = block.Cursor
	}

	return page, nil
}
