package item

import (
	"context"
	"fmt"

	"github.com/curatehq/curator/internal/db"
	"github.com/curatehq/curator/internal/domain"
	domitem "github.com/curatehq/curator/internal/domain/item"
	"github.com/curatehq/curator/internal/domain/query"
)

// DefaultKeyPrefix namespaces item keys and the items index.
const DefaultKeyPrefix = "curator:"

// store is the consumer interface for item queries (ISP).
type store interface {
	QueryDocuments(ctx context.Context, q *db.DocQuery) (*db.QueryResult, error)
	CountDocuments(ctx context.Context, index string, filter db.FilterExpr) (int, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
}

// Repo implements usecase/query.Repository over the document store.
//
// It owns the translation from a validated query.Spec to store-native
// expressions: only status, dataset and id-prefix predicates are ever pushed
// down, and every native order clause carries an ascending id tiebreak.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates an item repository. keyPrefix defaults to DefaultKeyPrefix.
func New(s store, keyPrefix string) *Repo {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// IndexName returns the FT index the repository queries.
func (r *Repo) IndexName() string {
	return r.keyPrefix + "items:idx"
}

func (r *Repo) itemKey(id string) string {
	return r.keyPrefix + "item:" + id
}

// IndexDefinition returns the FT index definition for items under the given
// key prefix, used for idempotent bootstrap at startup.
func IndexDefinition(keyPrefix string) *db.IndexDefinition {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return db.NewIndex(keyPrefix + "items:idx").
		Prefix(keyPrefix + "item:").
		SortableTag(fieldID).
		Tag(fieldStatus).
		Tag(fieldDataset).
		SortableNumeric(fieldReviewedAt).
		SortableNumeric(fieldReviewedMissing).
		SortableNumeric(fieldUpdatedAt).
		SortableNumeric(fieldTotalRefs).
		MustBuild()
}

// Get returns a single item by id.
func (r *Repo) Get(ctx context.Context, id string) (domitem.Item, error) {
	m, err := r.store.HGetAll(ctx, r.itemKey(id))
	if err != nil {
		return domitem.Item{}, fmt.Errorf("%w: get item %s: %w", domain.ErrStoreUnavailable, id, err)
	}
	if len(m) == 0 {
		return domitem.Item{}, domain.ErrItemNotFound
	}
	return parseHashFields(m), nil
}

// Put stores an item. The query engine itself never writes; this exists for
// import tooling and tests.
func (r *Repo) Put(ctx context.Context, it *domitem.Item) error {
	if err := r.store.HSet(ctx, r.itemKey(it.ID()), buildHashFields(it)); err != nil {
		return fmt.Errorf("%w: put item %s: %w", domain.ErrStoreUnavailable, it.ID(), err)
	}
	return nil
}

// QueryNative runs the terminal native path: filter, order and paginate in
// the store, with a separate count query over the same filter for the total.
func (r *Repo) QueryNative(ctx context.Context, spec query.Spec) ([]domitem.Item, int, error) {
	filter := nativeFilter(spec)

	res, err := r.store.QueryDocuments(ctx, &db.DocQuery{
		Index:  r.IndexName(),
		Filter: filter,
		Order:  nativeOrder(spec.SortField(), spec.SortDirection()),
		Load:   loadFields,
		Offset: spec.Offset(),
		Limit:  spec.Limit(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: native item query: %w", domain.ErrStoreUnavailable, err)
	}

	total, err := r.store.CountDocuments(ctx, r.IndexName(), filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: native item count: %w", domain.ErrStoreUnavailable, err)
	}

	return parseEntries(res), total, nil
}

// FetchCandidates retrieves up to limit candidates matching only the
// native-safe predicates. The fetch is ordered by the closest native
// approximation of the requested sort so a truncated candidate set still
// holds the most relevant documents; the authoritative order is recomputed
// in memory. truncated reports that more candidates existed than the cap
// allowed.
func (r *Repo) FetchCandidates(ctx context.Context, spec query.Spec, limit int) ([]domitem.Item, bool, error) {
	res, err := r.store.QueryDocuments(ctx, &db.DocQuery{
		Index:  r.IndexName(),
		Filter: nativeFilter(spec),
		Order:  nativeOrder(spec.SortField(), spec.SortDirection()),
		Load:   loadFields,
		Offset: 0,
		Limit:  limit + 1, // one past the cap to detect truncation
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: candidate fetch: %w", domain.ErrStoreUnavailable, err)
	}

	items := parseEntries(res)
	truncated := len(items) > limit
	if truncated {
		items = items[:limit]
	}
	return items, truncated, nil
}

func parseEntries(res *db.QueryResult) []domitem.Item {
	if res == nil || len(res.Entries) == 0 {
		return nil
	}
	items := make([]domitem.Item, 0, len(res.Entries))
	for _, e := range res.Entries {
		items = append(items, parseHashFields(e.Fields))
	}
	return items
}

// nativeFilter keeps only the predicates the store can execute directly.
func nativeFilter(spec query.Spec) db.FilterExpr {
	return db.NewFilter().
		Equal(fieldStatus, string(spec.Status())).
		Equal(fieldDataset, spec.Dataset()).
		Prefix(fieldID, spec.IDPrefix()).
		Build()
}

// nativeOrder maps a logical sort field to store order keys. hasAnswer and
// tagCount have no stored column; the reviewed columns stand in as a
// placeholder so the fetch stays syntactically valid and stable, and the
// authoritative order is recomputed in memory.
func nativeOrder(f query.Field, d query.Direction) []db.OrderKey {
	desc := d == query.Desc
	switch f {
	case query.FieldID:
		return []db.OrderKey{{Field: fieldID, Desc: desc}}
	case query.FieldUpdatedAt:
		return []db.OrderKey{
			{Field: fieldUpdatedAt, Desc: desc},
			{Field: fieldID},
		}
	case query.FieldTotalReferences:
		return []db.OrderKey{
			{Field: fieldTotalRefs, Desc: desc},
			{Field: fieldID},
		}
	case query.FieldReviewedAt, query.FieldHasAnswer, query.FieldTagCount:
		// reviewed_missing first keeps never-reviewed items last in both
		// directions.
		return []db.OrderKey{
			{Field: fieldReviewedMissing},
			{Field: fieldReviewedAt, Desc: desc},
			{Field: fieldID},
		}
	}
	return []db.OrderKey{{Field: fieldID}}
}
