package query

import "github.com/curatehq/curator/internal/domain/item"

// PageResult is one page of query output.
//
// Total always reflects the complete filtered set, never the page size.
// Truncated is true only when the in-memory path hit its fetch cap before
// retrieving all native-safe candidates; Total and Items are then a lower
// bound rather than a silently incomplete answer.
type PageResult struct {
	Items     []item.Item
	Total     int
	Limit     int
	Offset    int
	HasMore   bool
	Truncated bool
}

// NewPageResult assembles a page and derives HasMore from offset, page
// length and total. Both execution paths build their result through here so
// pagination metadata stays uniform.
func NewPageResult(pageItems []item.Item, total, limit, offset int, truncated bool) PageResult {
	return PageResult{
		Items:     pageItems,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
		HasMore:   offset+len(pageItems) < total,
		Truncated: truncated,
	}
}

// Paginate slices an ordered item set. The page is empty when offset is at
// or past the end; otherwise it is items[offset:offset+limit] clipped to the
// available length. hasMore reports whether items remain past the page.
func Paginate(items []item.Item, offset, limit int) (page []item.Item, hasMore bool) {
	if offset >= len(items) || offset < 0 || limit <= 0 {
		return nil, false
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], end < len(items)
}
