package query

import (
	"context"

	"github.com/curatehq/curator/internal/domain/item"
	"github.com/curatehq/curator/internal/domain/query"
)

// Repository defines the storage contract for item queries.
type Repository interface {
	// QueryNative runs filter, order and pagination in the store and returns
	// the page plus the total from a matching count query.
	QueryNative(ctx context.Context, spec query.Spec) ([]item.Item, int, error)

	// FetchCandidates retrieves up to limit items matching only native-safe
	// predicates, in a stable store-side order. The bool reports cap
	// truncation.
	FetchCandidates(ctx context.Context, spec query.Spec, limit int) ([]item.Item, bool, error)

	// Get returns a single item by id.
	Get(ctx context.Context, id string) (item.Item, error)
}
