package tabulate

import "sort"

// Headers accumulates the union of column names seen across rows.
type Headers struct {
	seen map[string]struct{}
}

// NewHeaders returns an empty collector.
func NewHeaders() *Headers {
	return &Headers{seen: make(map[string]struct{})}
}

// Add records every key of row.
func (h *Headers) Add(row Row) {
	for k := range row {
		h.seen[k] = struct{}{}
	}
}

// Sorted returns the collected names in byte order. It never returns nil.
func (h *Headers) Sorted() []string {
	headers := make([]string, 0, len(h.seen))
	for k := range h.seen {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

// CollectHeaders returns the sorted union of the keys of rows.
func CollectHeaders(rows []Row) []string {
	h := NewHeaders()
	for _, r := range rows {
		h.Add(r)
	}
	return h.Sorted()
}
