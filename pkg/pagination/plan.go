package pagination

// PageCount returns the number of requests needed to collect count items when
// at most perPage items arrive per request: ceil(count / perPage). Zero for
// count <= 0.
func PageCount(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 0
	}
	return (count + perPage - 1) / perPage
}

// Sizes returns the per-request page sizes for collecting count items, in
// request order. Every page requests perPage items except the last, which
// requests the exact remainder. Nil for count <= 0.
func Sizes(count, perPage int) []int {
	pages := PageCount(count, perPage)
	if pages == 0 {
		return nil
	}

	sizes := make([]int, pages)
	remaining := count
	for i := range sizes {
		if remaining < perPage {
			sizes[i] = remaining
		} else {
			sizes[i] = perPage
		}
		remaining -= sizes[i]
	}
	return sizes
}
