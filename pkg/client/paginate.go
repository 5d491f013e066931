package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sternrassler/twitch-helix-client/pkg/pagination"
)

// Request performs a single API call and decodes the whole response body
// into T. This is the lowest-level typed operation: one round trip, no
// envelope handling, no pagination.
//
// Failure modes: KindInvalidMethod for an unknown verb, KindRequestFailed
// for transport errors, KindUnsuccessfulStatus for non-2xx responses (the
// body is not decoded), and KindDeserializationFailed when the body does
// not match T.
func Request[T any](ctx context.Context, c *Client, method, endpoint string, params url.Values) (T, error) {
	var result T

	status, body, err := c.do(ctx, method, endpoint, params)
	if err != nil {
		return result, err
	}

	if status/100 != 2 {
		helixErrorsTotal.WithLabelValues(string(KindUnsuccessfulStatus)).Inc()
		return result, &Error{
			Kind:       KindUnsuccessfulStatus,
			StatusCode: status,
			Message:    http.StatusText(status),
		}
	}

	if err := json.Unmarshal(body, &result); err != nil {
		helixErrorsTotal.WithLabelValues(string(KindDeserializationFailed)).Inc()
		return result, &Error{Kind: KindDeserializationFailed, Message: "decode response body", Err: err}
	}

	return result, nil
}

// fetchPage performs one request against an enveloped endpoint and splits
// the response into its raw item array and pagination cursor. Typed
// decoding of the items happens separately in decodeItems; the two-phase
// split is what lets the cursor survive generic item decoding.
func (c *Client) fetchPage(ctx context.Context, method, endpoint string, params url.Values) (pagination.Page, error) {
	status, body, err := c.do(ctx, method, endpoint, params)
	if err != nil {
		return pagination.Page{}, err
	}

	if status/100 != 2 {
		helixErrorsTotal.WithLabelValues(string(KindUnsuccessfulStatus)).Inc()
		return pagination.Page{}, &Error{
			Kind:       KindUnsuccessfulStatus,
			StatusCode: status,
			Message:    http.StatusText(status),
		}
	}

	page, err := pagination.ParsePage(body)
	if err != nil {
		if errors.Is(err, pagination.ErrMalformed) {
			helixErrorsTotal.WithLabelValues(string(KindMalformedEnvelope)).Inc()
			return pagination.Page{}, &Error{Kind: KindMalformedEnvelope, Err: err}
		}
		helixErrorsTotal.WithLabelValues(string(KindDeserializationFailed)).Inc()
		return pagination.Page{}, &Error{Kind: KindDeserializationFailed, Message: "parse response envelope", Err: err}
	}

	return page, nil
}

// decodeItems completes the second phase of the envelope decode: each raw
// item becomes one T.
func decodeItems[T any](raw []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			helixErrorsTotal.WithLabelValues(string(KindDeserializationFailed)).Inc()
			return nil, &Error{
				Kind:    KindDeserializationFailed,
				Message: fmt.Sprintf("decode item %d", i),
				Err:     err,
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Query fetches a single page from an enveloped endpoint and decodes its
// items into a slice of T. The pagination cursor is discarded; use
// CollectPages to walk multiple pages.
func Query[T any](ctx context.Context, c *Client, method, endpoint string, params url.Values) ([]T, error) {
	page, err := c.fetchPage(ctx, method, endpoint, params)
	if err != nil {
		return nil, err
	}
	return decodeItems[T](page.Items)
}

// CollectPages walks a cursor-paginated endpoint until exactly count items
// have been collected.
//
// Page sizes follow pagination.Sizes: perPageMax items per page except a
// smaller exact remainder on the last page. The cursor from each response
// feeds the next request's after parameter, and the first request sends
// after with an empty value. Pages are fetched strictly sequentially since
// each cursor is a data dependency of the following request. count == 0
// returns an empty slice without issuing any request.
//
// Any page failure aborts the walk and returns no items. When the API runs
// out of data early (a short page, or a missing cursor while more pages
// are owed), the items collected so far are returned together with an
// error wrapping ErrExhausted.
//
// base must not contain first or after; both are set per page.
func CollectPages[T any](ctx context.Context, c *Client, method, endpoint string, base url.Values, perPageMax, count int) ([]T, error) {
	if perPageMax <= 0 {
		return nil, fmt.Errorf("per-page maximum must be positive (got %d)", perPageMax)
	}
	if count < 0 {
		return nil, fmt.Errorf("count must be non-negative (got %d)", count)
	}

	sizes := pagination.Sizes(count, perPageMax)
	items := make([]T, 0, count)
	cursor := ""

	for i, size := range sizes {
		params := url.Values{}
		for key, values := range base {
			params[key] = values
		}
		params.Set("first", strconv.Itoa(size))
		params.Set("after", cursor)

		page, err := c.fetchPage(ctx, method, endpoint, params)
		if err != nil {
			return nil, err
		}
		helixPagesFetchedTotal.WithLabelValues(endpoint).Inc()

		decoded, err := decodeItems[T](page.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, decoded...)

		c.logger.Trace().
			Str("endpoint", endpoint).
			Int("page", i+1).
			Int("pages", len(sizes)).
			Int("first", size).
			Int("items", len(decoded)).
			Msg("Fetched page")

		lastPage := i == len(sizes)-1

		// A short page, or a missing cursor while pages remain, means
		// the upstream resource has fewer items than requested
		if len(decoded) < size || (!lastPage && page.Cursor == "") {
			return items, fmt.Errorf("%w: %d of %d items after %d pages",
				ErrExhausted, len(items), count, i+1)
		}

		cursor = page.Cursor
	}

	// Pages that over-deliver never push the result past count
	if len(items) > count {
		items = items[:count]
	}

	return items, nil
}
