package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/curatehq/curator/internal/domain/item"
	"github.com/curatehq/curator/internal/domain/query"
	"github.com/curatehq/curator/internal/logger"
	"github.com/curatehq/curator/internal/metrics"
)

// DefaultFetchCap bounds the in-memory candidate fetch when no cap is configured.
const DefaultFetchCap = 10000

// Config holds static query engine settings. Passed in at construction so
// tests can vary it per case without global state.
type Config struct {
	// FetchCap bounds how many candidates the in-memory path retrieves.
	FetchCap int
	// FoldURLCase makes reference-URL substring matching case-insensitive.
	FoldURLCase bool
}

func (c Config) withDefaults() Config {
	if c.FetchCap <= 0 {
		c.FetchCap = DefaultFetchCap
	}
	return c
}

// Service answers paginated, filtered, sorted item queries. Each request is
// an independent, stateless unit of work; the service holds only static
// configuration.
type Service struct {
	repo Repository
	cfg  Config
}

// New creates a query service.
func New(repo Repository, cfg Config) *Service {
	return &Service{repo: repo, cfg: cfg.withDefaults()}
}

// Query classifies the spec, dispatches to the native or in-memory path and
// returns one page of results. The spec is already validated; no store call
// happens for invalid input.
func (s *Service) Query(ctx context.Context, spec query.Spec) (query.PageResult, error) {
	plan := query.Classify(spec)

	logger.FromContext(ctx).Debug("query classified",
		zap.String("plan", string(plan.Path)),
		zap.String("reason", plan.Reason),
		zap.String("sort", string(spec.SortField())),
	)

	start := time.Now()
	var (
		res query.PageResult
		err error
	)
	switch plan.Path {
	case query.PathNative:
		res, err = s.runNative(ctx, spec)
	default:
		res, err = s.runInMemory(ctx, spec)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.QueriesTotal.WithLabelValues(string(plan.Path), status).Inc()
	metrics.QueryDuration.WithLabelValues(string(plan.Path)).Observe(time.Since(start).Seconds())
	if res.Truncated {
		metrics.QueryTruncationsTotal.Inc()
	}

	return res, err
}

// Get returns a single item by id.
func (s *Service) Get(ctx context.Context, id string) (item.Item, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return item.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// runNative executes the store-side path. The store already filtered,
// ordered and sliced the page, so pagination here is a pass-through with the
// total supplied by the count query.
func (s *Service) runNative(ctx context.Context, spec query.Spec) (query.PageResult, error) {
	items, total, err := s.repo.QueryNative(ctx, spec)
	if err != nil {
		return query.PageResult{}, fmt.Errorf("native path: %w", err)
	}
	return query.NewPageResult(items, total, spec.Limit(), spec.Offset(), false), nil
}
