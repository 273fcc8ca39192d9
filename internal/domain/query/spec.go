package query

import (
	"fmt"

	"github.com/curatehq/curator/internal/domain"
	"github.com/curatehq/curator/internal/domain/item"
)

// Pagination defaults, used when Limits is zero-valued.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Limits bounds pagination, usually sourced from configuration.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

func (l Limits) withDefaults() Limits {
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = MaxLimit
	}
	return l
}

// Params is the raw, unvalidated query input as it arrives from transport.
type Params struct {
	Status          string
	Dataset         string
	IncludeTags     []string
	ExcludeTags     []string
	IDPrefix        string
	RefURLSubstring string
	Keyword         string
	SortField       string
	SortDirection   string
	Limit           int
	Offset          int
}

// Spec is a validated item query. Construct via New.
type Spec struct {
	status          item.Status
	dataset         string
	includeTags     []string
	excludeTags     []string
	idPrefix        string
	refURLSubstring string
	keyword         string
	sortField       Field
	sortDirection   Direction
	limit           int
	offset          int
}

// New validates and normalizes query parameters.
// Defaults: sort by updatedAt descending, limit from lim.
// Validation errors wrap the domain sentinels and are returned before any
// store access.
func New(p Params, lim Limits) (Spec, error) {
	lim = lim.withDefaults()

	status := item.Status(p.Status)
	if p.Status != "" && !status.IsValid() {
		return Spec{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidFilter, p.Status)
	}

	field := Field(p.SortField)
	if p.SortField == "" {
		field = FieldUpdatedAt
	}
	if !field.IsValid() {
		return Spec{}, fmt.Errorf("%w: %q", domain.ErrInvalidSortField, p.SortField)
	}

	dir := Direction(p.SortDirection)
	if p.SortDirection == "" {
		dir = Desc
	}
	if !dir.IsValid() {
		return Spec{}, fmt.Errorf("%w: direction %q", domain.ErrInvalidSortField, p.SortDirection)
	}

	limit := p.Limit
	if limit == 0 {
		limit = lim.DefaultLimit
	}
	if limit < 1 || limit > lim.MaxLimit {
		return Spec{}, fmt.Errorf("%w: limit %d not in [1, %d]", domain.ErrInvalidPagination, p.Limit, lim.MaxLimit)
	}
	if p.Offset < 0 {
		return Spec{}, fmt.Errorf("%w: offset %d is negative", domain.ErrInvalidPagination, p.Offset)
	}

	return Spec{
		status:          status,
		dataset:         p.Dataset,
		includeTags:     normalizeTags(p.IncludeTags),
		excludeTags:     normalizeTags(p.ExcludeTags),
		idPrefix:        p.IDPrefix,
		refURLSubstring: p.RefURLSubstring,
		keyword:         p.Keyword,
		sortField:       field,
		sortDirection:   dir,
		limit:           limit,
		offset:          p.Offset,
	}, nil
}

// normalizeTags drops empty entries and duplicates, preserving order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Status returns the status filter, empty for no filter.
func (s *Spec) Status() item.Status { return s.status }

// Dataset returns the dataset exact-match filter, empty for no filter.
func (s *Spec) Dataset() string { return s.dataset }

// IncludeTags returns tags that must all be present on an item.
func (s *Spec) IncludeTags() []string { return s.includeTags }

// ExcludeTags returns tags none of which may be present on an item.
func (s *Spec) ExcludeTags() []string { return s.excludeTags }

// IDPrefix returns the item id prefix filter, empty for no filter.
func (s *Spec) IDPrefix() string { return s.idPrefix }

// RefURLSubstring returns the reference-URL substring filter.
func (s *Spec) RefURLSubstring() string { return s.refURLSubstring }

// Keyword returns the free-text keyword filter.
func (s *Spec) Keyword() string { return s.keyword }

// SortField returns the requested sort field.
func (s *Spec) SortField() Field { return s.sortField }

// SortDirection returns the requested sort direction.
func (s *Spec) SortDirection() Direction { return s.sortDirection }

// Limit returns the page size.
func (s *Spec) Limit() int { return s.limit }

// Offset returns the page offset.
func (s *Spec) Offset() int { return s.offset }

// HasTagFilters reports whether any include or exclude tags are set.
func (s *Spec) HasTagFilters() bool {
	return len(s.includeTags) > 0 || len(s.excludeTags) > 0
}
