package query

import (
	"context"
	"fmt"
	"slices"

	"github.com/curatehq/curator/internal/domain/item"
	"github.com/curatehq/curator/internal/domain/query"
	"github.com/curatehq/curator/internal/metrics"
)

// runInMemory executes the fallback path: fetch a bounded candidate set with
// only native-safe predicates pushed down, then filter, sort and paginate in
// process. The full bounded scan always happens before sorting, so
// pagination boundaries reflect true logical order even for derived sort
// keys.
func (s *Service) runInMemory(ctx context.Context, spec query.Spec) (query.PageResult, error) {
	candidates, truncated, err := s.repo.FetchCandidates(ctx, spec, s.cfg.FetchCap)
	if err != nil {
		return query.PageResult{}, fmt.Errorf("in-memory path: %w", err)
	}
	metrics.CandidateSetSize.Observe(float64(len(candidates)))

	filtered := filterItems(spec, candidates, s.cfg.FoldURLCase)

	slices.SortFunc(filtered, query.Comparator(spec.SortField(), spec.SortDirection()))

	total := len(filtered)
	page, _ := query.Paginate(filtered, spec.Offset(), spec.Limit())

	return query.NewPageResult(page, total, spec.Limit(), spec.Offset(), truncated), nil
}

// filterItems applies the predicates the store could not execute.
// Candidates already satisfy status, dataset and id-prefix.
func filterItems(spec query.Spec, candidates []item.Item, foldURLCase bool) []item.Item {
	out := make([]item.Item, 0, len(candidates))
	for _, it := range candidates {
		if !matchesSpec(spec, &it, foldURLCase) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesSpec(spec query.Spec, it *item.Item, foldURLCase bool) bool {
	// includeTags: every tag must be present in the union of manual and
	// computed tags.
	for _, tag := range spec.IncludeTags() {
		if !it.HasTag(tag) {
			return false
		}
	}
	// excludeTags: none may be present in that same union.
	for _, tag := range spec.ExcludeTags() {
		if it.HasTag(tag) {
			return false
		}
	}
	if sub := spec.RefURLSubstring(); sub != "" {
		if !it.AnyRefURLContains(sub, foldURLCase) {
			return false
		}
	}
	if kw := spec.Keyword(); kw != "" {
		if !it.MatchesKeyword(kw) {
			return false
		}
	}
	return true
}
