package item

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/curatehq/curator/internal/db"
	"github.com/curatehq/curator/internal/domain"
	domitem "github.com/curatehq/curator/internal/domain/item"
	"github.com/curatehq/curator/internal/domain/query"
)

type mockStore struct {
	queryResult *db.QueryResult
	queryErr    error
	count       int
	countErr    error
	hash        map[string]string
	hashErr     error

	lastQuery       *db.DocQuery
	lastCountIndex  string
	lastCountFilter db.FilterExpr
	lastKey         string
	lastFields      map[string]string
}

func (m *mockStore) QueryDocuments(_ context.Context, q *db.DocQuery) (*db.QueryResult, error) {
	m.lastQuery = q
	return m.queryResult, m.queryErr
}

func (m *mockStore) CountDocuments(_ context.Context, index string, filter db.FilterExpr) (int, error) {
	m.lastCountIndex = index
	m.lastCountFilter = filter
	return m.count, m.countErr
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.lastKey = key
	return m.hash, m.hashErr
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.lastKey = key
	m.lastFields = fields
	return m.hashErr
}

func mustSpec(t *testing.T, p query.Params) query.Spec {
	t.Helper()
	s, err := query.New(p, query.Limits{})
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return s
}

func entryFor(id string) db.DocEntry {
	return db.DocEntry{Fields: map[string]string{
		fieldID:              id,
		fieldStatus:          "approved",
		fieldQuestion:        "q " + id,
		fieldUpdatedAt:       "1735689600000",
		fieldReviewedMissing: "1",
		fieldReviewedAt:      "0",
	}}
}

func entries(ids ...string) *db.QueryResult {
	res := &db.QueryResult{}
	for _, id := range ids {
		res.Entries = append(res.Entries, entryFor(id))
	}
	return res
}

func TestQueryNative(t *testing.T) {
	store := &mockStore{queryResult: entries("a", "b"), count: 17}
	repo := New(store, "")

	spec := mustSpec(t, query.Params{
		Status:        "approved",
		Dataset:       "golden",
		IDPrefix:      "item-",
		SortField:     "updatedAt",
		SortDirection: "desc",
		Limit:         2,
		Offset:        4,
	})

	items, total, err := repo.QueryNative(context.Background(), spec)
	if err != nil {
		t.Fatalf("QueryNative: %v", err)
	}
	if total != 17 {
		t.Errorf("total = %d, want 17 (from the count query)", total)
	}
	if len(items) != 2 || items[0].ID() != "a" || items[1].ID() != "b" {
		t.Errorf("items = %v", items)
	}

	q := store.lastQuery
	if q.Index != "curator:items:idx" {
		t.Errorf("index = %q", q.Index)
	}
	if q.Offset != 4 || q.Limit != 2 {
		t.Errorf("offset/limit = %d/%d, want 4/2", q.Offset, q.Limit)
	}
	if !reflect.DeepEqual(q.Load, loadFields) {
		t.Errorf("load = %v", q.Load)
	}

	wantConds := []db.FilterCond{
		{Field: fieldStatus, Value: "approved", Op: db.OpEqual},
		{Field: fieldDataset, Value: "golden", Op: db.OpEqual},
		{Field: fieldID, Value: "item-", Op: db.OpPrefix},
	}
	if got := q.Filter.Conds(); !reflect.DeepEqual(got, wantConds) {
		t.Errorf("filter conds = %+v, want %+v", got, wantConds)
	}
	if got := store.lastCountFilter.Conds(); !reflect.DeepEqual(got, wantConds) {
		t.Errorf("count filter conds = %+v", got)
	}

	wantOrder := []db.OrderKey{
		{Field: fieldUpdatedAt, Desc: true},
		{Field: fieldID},
	}
	if !reflect.DeepEqual(q.Order, wantOrder) {
		t.Errorf("order = %+v, want %+v", q.Order, wantOrder)
	}
}

func TestQueryNative_EmptyFilterOmitsConds(t *testing.T) {
	store := &mockStore{queryResult: entries()}
	repo := New(store, "")

	if _, _, err := repo.QueryNative(context.Background(), mustSpec(t, query.Params{})); err != nil {
		t.Fatalf("QueryNative: %v", err)
	}
	if !store.lastQuery.Filter.IsEmpty() {
		t.Errorf("filter conds = %+v, want empty", store.lastQuery.Filter.Conds())
	}
}

func TestNativeOrder(t *testing.T) {
	tests := []struct {
		field     query.Field
		direction query.Direction
		want      []db.OrderKey
	}{
		{query.FieldID, query.Desc, []db.OrderKey{{Field: fieldID, Desc: true}}},
		{query.FieldUpdatedAt, query.Asc, []db.OrderKey{
			{Field: fieldUpdatedAt}, {Field: fieldID},
		}},
		{query.FieldTotalReferences, query.Desc, []db.OrderKey{
			{Field: fieldTotalRefs, Desc: true}, {Field: fieldID},
		}},
		// reviewed_missing leads so never-reviewed items land last in both
		// directions.
		{query.FieldReviewedAt, query.Desc, []db.OrderKey{
			{Field: fieldReviewedMissing},
			{Field: fieldReviewedAt, Desc: true},
			{Field: fieldID},
		}},
		{query.FieldReviewedAt, query.Asc, []db.OrderKey{
			{Field: fieldReviewedMissing},
			{Field: fieldReviewedAt},
			{Field: fieldID},
		}},
		// hasAnswer uses the reviewed columns as a stand-in ordering.
		{query.FieldHasAnswer, query.Desc, []db.OrderKey{
			{Field: fieldReviewedMissing},
			{Field: fieldReviewedAt, Desc: true},
			{Field: fieldID},
		}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.field, tt.direction), func(t *testing.T) {
			if got := nativeOrder(tt.field, tt.direction); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("nativeOrder = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFetchCandidates(t *testing.T) {
	store := &mockStore{queryResult: entries("a", "b", "c", "d")}
	repo := New(store, "")

	spec := mustSpec(t, query.Params{Keyword: "x"})

	items, truncated, err := repo.FetchCandidates(context.Background(), spec, 3)
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if !truncated {
		t.Error("truncated = false, want true")
	}
	if len(items) != 3 {
		t.Errorf("len(items) = %d, want 3 (trimmed to the cap)", len(items))
	}

	q := store.lastQuery
	if q.Limit != 4 {
		t.Errorf("store limit = %d, want cap+1 = 4", q.Limit)
	}
	if q.Offset != 0 {
		t.Errorf("store offset = %d, want 0", q.Offset)
	}
	// Default sort is updatedAt desc; the fetch pre-orders by that native
	// approximation so truncation keeps the most relevant candidates.
	wantOrder := []db.OrderKey{{Field: fieldUpdatedAt, Desc: true}, {Field: fieldID}}
	if !reflect.DeepEqual(q.Order, wantOrder) {
		t.Errorf("order = %+v, want %+v", q.Order, wantOrder)
	}
}

func TestFetchCandidates_PlaceholderOrderForDerivedSort(t *testing.T) {
	store := &mockStore{queryResult: entries("a")}
	repo := New(store, "")

	spec := mustSpec(t, query.Params{SortField: "hasAnswer", SortDirection: "desc"})
	if _, _, err := repo.FetchCandidates(context.Background(), spec, 10); err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}

	wantOrder := []db.OrderKey{
		{Field: fieldReviewedMissing},
		{Field: fieldReviewedAt, Desc: true},
		{Field: fieldID},
	}
	if !reflect.DeepEqual(store.lastQuery.Order, wantOrder) {
		t.Errorf("order = %+v, want reviewed placeholder", store.lastQuery.Order)
	}
}

func TestFetchCandidates_UnderCap(t *testing.T) {
	store := &mockStore{queryResult: entries("a", "b")}
	repo := New(store, "")

	items, truncated, err := repo.FetchCandidates(context.Background(), mustSpec(t, query.Params{}), 3)
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if truncated {
		t.Error("truncated = true, want false")
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
}

func TestGet(t *testing.T) {
	reviewed := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	it := domitem.Reconstruct("item-9", domitem.StatusApproved, "", "q", "a",
		nil, nil, &reviewed, reviewed, 0, nil)
	store := &mockStore{hash: buildHashFields(&it)}
	repo := New(store, "test:")

	got, err := repo.Get(context.Background(), "item-9")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID() != "item-9" {
		t.Errorf("id = %q", got.ID())
	}
	if store.lastKey != "test:item:item-9" {
		t.Errorf("key = %q", store.lastKey)
	}
}

func TestGet_NotFound(t *testing.T) {
	store := &mockStore{hash: map[string]string{}}
	repo := New(store, "")

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestStoreErrorsWrapUnavailable(t *testing.T) {
	boom := errors.New("boom")

	store := &mockStore{queryErr: boom}
	repo := New(store, "")
	spec := mustSpec(t, query.Params{})

	if _, _, err := repo.QueryNative(context.Background(), spec); !errors.Is(err, domain.ErrStoreUnavailable) || !errors.Is(err, boom) {
		t.Errorf("QueryNative err = %v", err)
	}
	if _, _, err := repo.FetchCandidates(context.Background(), spec, 10); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("FetchCandidates err = %v", err)
	}

	store = &mockStore{queryResult: entries(), countErr: boom}
	repo = New(store, "")
	if _, _, err := repo.QueryNative(context.Background(), spec); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("count err = %v", err)
	}

	store = &mockStore{hashErr: boom}
	repo = New(store, "")
	if _, err := repo.Get(context.Background(), "x"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Get err = %v", err)
	}
}

func TestIndexDefinition(t *testing.T) {
	def := IndexDefinition("test:")

	if def.Name != "test:items:idx" {
		t.Errorf("name = %q", def.Name)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "test:item:" {
		t.Errorf("prefixes = %v", def.Prefixes)
	}

	byName := map[string]db.IndexField{}
	for _, f := range def.Fields {
		byName[f.Name] = f
	}
	for _, name := range []string{fieldID, fieldStatus, fieldDataset,
		fieldReviewedAt, fieldReviewedMissing, fieldUpdatedAt, fieldTotalRefs} {
		if _, ok := byName[name]; !ok {
			t.Errorf("field %q missing from index", name)
		}
	}
	if !byName[fieldReviewedMissing].Sortable {
		t.Error("reviewed_missing must be sortable for native ordering")
	}
	if byName[fieldStatus].Type != db.IndexFieldTag {
		t.Errorf("status type = %v, want tag", byName[fieldStatus].Type)
	}
}
