package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/curatehq/curator/internal/domain"
	domitem "github.com/curatehq/curator/internal/domain/item"
	domquery "github.com/curatehq/curator/internal/domain/query"
	healthuc "github.com/curatehq/curator/internal/usecase/health"
	queryuc "github.com/curatehq/curator/internal/usecase/query"
)

// --- Fakes ---

type fakeRepo struct {
	items    []domitem.Item
	queryErr error

	lastSpec *domquery.Spec
}

func (f *fakeRepo) QueryNative(_ context.Context, spec domquery.Spec) ([]domitem.Item, int, error) {
	f.lastSpec = &spec
	if f.queryErr != nil {
		return nil, 0, f.queryErr
	}
	page, _ := domquery.Paginate(f.items, spec.Offset(), spec.Limit())
	return page, len(f.items), nil
}

func (f *fakeRepo) FetchCandidates(_ context.Context, spec domquery.Spec, _ int) ([]domitem.Item, bool, error) {
	f.lastSpec = &spec
	if f.queryErr != nil {
		return nil, false, f.queryErr
	}
	return f.items, false, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (domitem.Item, error) {
	for _, it := range f.items {
		if it.ID() == id {
			return it, nil
		}
	}
	return domitem.Item{}, domain.ErrItemNotFound
}

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(context.Context) error { return p.err }

func newTestServer(repo *fakeRepo, pingErr error) http.Handler {
	srv := NewServer(
		queryuc.New(repo, queryuc.Config{}),
		healthuc.New(&fakePinger{err: pingErr}),
		domquery.Limits{},
		zap.NewNop(),
	)
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func testItem(id string) domitem.Item {
	reviewed := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return domitem.Reconstruct(
		id, domitem.StatusApproved, "golden", "q "+id, "a "+id,
		[]string{"group:a"}, nil, &reviewed, reviewed, 1,
		[]domitem.Reference{domitem.NewReference("https://example.com/"+id, "t", "")},
	)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- GET /items ---

func TestQueryItems_OK(t *testing.T) {
	repo := &fakeRepo{items: []domitem.Item{testItem("item-1"), testItem("item-2")}}
	h := newTestServer(repo, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items?status=approved&limit=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	page := decode[pagePayload](t, rec)
	if page.Total != 2 || len(page.Items) != 2 {
		t.Errorf("total/items = %d/%d, want 2/2", page.Total, len(page.Items))
	}
	if page.Limit != 10 {
		t.Errorf("limit = %d, want 10", page.Limit)
	}
	if page.Items[0].ID != "item-1" || !page.Items[0].HasAnswer || page.Items[0].TagCount != 1 {
		t.Errorf("unexpected first item: %+v", page.Items[0])
	}
}

func TestQueryItems_ParamMapping(t *testing.T) {
	repo := &fakeRepo{}
	h := newTestServer(repo, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/items?status=pending&dataset=golden&id_prefix=item-&sort=updatedAt&direction=asc&limit=5&offset=15", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	spec := repo.lastSpec
	if spec == nil {
		t.Fatal("no spec reached the repository")
	}
	if spec.Status() != domitem.StatusPending || spec.Dataset() != "golden" || spec.IDPrefix() != "item-" {
		t.Errorf("filters = %s/%s/%s", spec.Status(), spec.Dataset(), spec.IDPrefix())
	}
	if spec.SortField() != domquery.FieldUpdatedAt || spec.SortDirection() != domquery.Asc {
		t.Errorf("sort = %s %s", spec.SortField(), spec.SortDirection())
	}
	if spec.Limit() != 5 || spec.Offset() != 15 {
		t.Errorf("limit/offset = %d/%d", spec.Limit(), spec.Offset())
	}
}

func TestQueryItems_TagParams(t *testing.T) {
	repo := &fakeRepo{}
	h := newTestServer(repo, nil)

	// Repeated parameters and comma-separated lists both work.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/items?include_tags=group:a,group:b&include_tags=topic:net&exclude_tags=group:c", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	spec := repo.lastSpec
	wantInclude := []string{"group:a", "group:b", "topic:net"}
	if !slices.Equal(spec.IncludeTags(), wantInclude) {
		t.Errorf("include tags = %v, want %v", spec.IncludeTags(), wantInclude)
	}
	if !slices.Equal(spec.ExcludeTags(), []string{"group:c"}) {
		t.Errorf("exclude tags = %v", spec.ExcludeTags())
	}
}

func TestQueryItems_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantCode string
	}{
		{"non-integer limit", "/items?limit=abc", codeBadRequest},
		{"non-integer offset", "/items?offset=x", codeBadRequest},
		{"limit above max", "/items?limit=1000", codeValidationFailed},
		{"negative offset", "/items?offset=-1", codeValidationFailed},
		{"unknown sort field", "/items?sort=nonsense", codeValidationFailed},
		{"unknown status", "/items?status=archived", codeValidationFailed},
		{"unknown direction", "/items?sort=id&direction=sideways", codeValidationFailed},
	}

	h := newTestServer(&fakeRepo{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body)
			}
			if e := decode[errorPayload](t, rec); e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestQueryItems_StoreUnavailable(t *testing.T) {
	repo := &fakeRepo{queryErr: domain.ErrStoreUnavailable}
	h := newTestServer(repo, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if e := decode[errorPayload](t, rec); e.Code != codeStoreUnavailable {
		t.Errorf("code = %q", e.Code)
	}
}

func TestQueryItems_InternalError(t *testing.T) {
	repo := &fakeRepo{queryErr: errors.New("unexpected")}
	h := newTestServer(repo, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if e := decode[errorPayload](t, rec); e.Code != codeInternalError {
		t.Errorf("code = %q", e.Code)
	}
}

// --- GET /items/{id} ---

func TestGetItem_OK(t *testing.T) {
	repo := &fakeRepo{items: []domitem.Item{testItem("item-7")}}
	h := newTestServer(repo, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/item-7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	it := decode[itemPayload](t, rec)
	if it.ID != "item-7" || it.Status != "approved" {
		t.Errorf("item = %+v", it)
	}
	if len(it.References) != 1 || it.References[0].URL != "https://example.com/item-7" {
		t.Errorf("references = %+v", it.References)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	h := newTestServer(&fakeRepo{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/ghost", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if e := decode[errorPayload](t, rec); e.Code != codeNotFound {
		t.Errorf("code = %q", e.Code)
	}
}

// --- GET /health ---

func TestHealth(t *testing.T) {
	h := newTestServer(&fakeRepo{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestHealth_Degraded(t *testing.T) {
	h := newTestServer(&fakeRepo{}, errors.New("down"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

// --- Auth middleware ---

func TestBearerAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := BearerAuthMiddleware([]string{"secret"})(next)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"valid token", "/items", "Bearer secret", http.StatusOK},
		{"missing header", "/items", "", http.StatusUnauthorized},
		{"wrong scheme", "/items", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "/items", "Bearer nope", http.StatusUnauthorized},
		{"health exempt", "/health", "", http.StatusOK},
		{"metrics exempt", "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBearerAuth_DisabledWhenNoKeys(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := BearerAuthMiddleware(nil)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want pass-through 200", rec.Code)
	}
}
