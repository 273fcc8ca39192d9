package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/curatehq/curator/internal/domain"
	domitem "github.com/curatehq/curator/internal/domain/item"
	domquery "github.com/curatehq/curator/internal/domain/query"
	healthuc "github.com/curatehq/curator/internal/usecase/health"
	queryuc "github.com/curatehq/curator/internal/usecase/query"
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "item_not_found"
	codeStoreUnavailable = "store_unavailable"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the query engine over HTTP.
type Server struct {
	items         *queryuc.Service
	health        *healthuc.Service
	limits        domquery.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	items *queryuc.Service,
	health *healthuc.Service,
	limits domquery.Limits,
	logger *zap.Logger,
) *Server {
	s := &Server{
		items:  items,
		health: health,
		limits: limits,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidSortField, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidPagination, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Routes registers all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/items", s.handleQueryItems)
	r.Get("/items/{id}", s.handleGetItem)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// handleQueryItems handles GET /items. Query parameters map 1:1 onto the
// query spec; tags accept repeated parameters or comma-separated lists.
func (s *Server) handleQueryItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, ok := s.intParam(w, q.Get("limit"), "limit")
	if !ok {
		return
	}
	offset, ok := s.intParam(w, q.Get("offset"), "offset")
	if !ok {
		return
	}

	params := domquery.Params{
		Status:          q.Get("status"),
		Dataset:         q.Get("dataset"),
		IncludeTags:     tagParams(q["include_tags"]),
		ExcludeTags:     tagParams(q["exclude_tags"]),
		IDPrefix:        q.Get("id_prefix"),
		RefURLSubstring: q.Get("ref_url_contains"),
		Keyword:         q.Get("keyword"),
		SortField:       q.Get("sort"),
		SortDirection:   q.Get("direction"),
		Limit:           limit,
		Offset:          offset,
	}

	spec, err := domquery.New(params, s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.items.Query(r.Context(), spec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToPayload(res))
}

// handleGetItem handles GET /items/{id}.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "item id is required")
		return
	}

	it, err := s.items.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, itemToPayload(&it))
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, status, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

func (s *Server) intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}

// tagParams flattens repeated and comma-separated tag parameters.
func tagParams(values []string) []string {
	var out []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// --- Payloads ---

type referencePayload struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}

type itemPayload struct {
	ID              string             `json:"id"`
	Status          string             `json:"status"`
	Dataset         string             `json:"dataset,omitempty"`
	Question        string             `json:"question"`
	Answer          string             `json:"answer,omitempty"`
	ManualTags      []string           `json:"manual_tags,omitempty"`
	ComputedTags    []string           `json:"computed_tags,omitempty"`
	ReviewedAt      *time.Time         `json:"reviewed_at,omitempty"`
	UpdatedAt       time.Time          `json:"updated_at"`
	HasAnswer       bool               `json:"has_answer"`
	TagCount        int                `json:"tag_count"`
	TotalReferences int                `json:"total_references"`
	References      []referencePayload `json:"references,omitempty"`
}

type pagePayload struct {
	Items     []itemPayload `json:"items"`
	Total     int           `json:"total"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
	HasMore   bool          `json:"has_more"`
	Truncated bool          `json:"truncated"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func itemToPayload(it *domitem.Item) itemPayload {
	refs := it.References()
	var payloadRefs []referencePayload
	if len(refs) > 0 {
		payloadRefs = make([]referencePayload, len(refs))
		for i, r := range refs {
			payloadRefs[i] = referencePayload{URL: r.URL(), Title: r.Title(), Excerpt: r.Excerpt()}
		}
	}
	return itemPayload{
		ID:              it.ID(),
		Status:          string(it.Status()),
		Dataset:         it.Dataset(),
		Question:        it.Question(),
		Answer:          it.Answer(),
		ManualTags:      it.ManualTags(),
		ComputedTags:    it.ComputedTags(),
		ReviewedAt:      it.ReviewedAt(),
		UpdatedAt:       it.UpdatedAt(),
		HasAnswer:       it.HasAnswer(),
		TagCount:        it.TagCount(),
		TotalReferences: it.TotalReferences(),
		References:      payloadRefs,
	}
}

func pageToPayload(res domquery.PageResult) pagePayload {
	items := make([]itemPayload, len(res.Items))
	for i := range res.Items {
		items[i] = itemToPayload(&res.Items[i])
	}
	return pagePayload{
		Items:     items,
		Total:     res.Total,
		Limit:     res.Limit,
		Offset:    res.Offset,
		HasMore:   res.HasMore,
		Truncated: res.Truncated,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorPayload{Code: code, Message: message})
}
