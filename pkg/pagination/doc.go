// Package pagination models Helix cursor pagination: the response envelope,
// the continuation cursor, and the arithmetic that turns a requested item
// count into a sequence of page sizes.
//
// Helix pages are chained by an opaque cursor: the "pagination" block of page
// i carries the cursor that must be sent as the "after" parameter of page
// i+1. Unlike page-number schemes, pages cannot be fetched in parallel; the
// cursor is a data dependency between consecutive requests.
//
// Example usage:
//
//	sizes := pagination.Sizes(250, 100) // [100 100 50]
//	page, err := pagination.ParsePage(body)
//	// page.Items holds the raw item array, page.Cursor feeds the next request
//
// The aggregation loop that drives these pieces lives in pkg/client.
package pagination
