package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/curatehq/curator/internal/db"
)

// QueryDocuments runs a filtered, ordered, paginated fetch via FT.AGGREGATE.
//
// FT.SEARCH SORTBY accepts a single key, which cannot express the id
// tiebreak the engine requires; FT.AGGREGATE SORTBY takes multiple
// properties, so ordered fetches go through the aggregation pipeline with an
// explicit LOAD of the requested fields.
func (s *Store) QueryDocuments(ctx context.Context, q *db.DocQuery) (*db.QueryResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	args := []string{q.Index, buildFilterQuery(q.Filter)}

	if len(q.Load) > 0 {
		args = append(args, "LOAD", strconv.Itoa(len(q.Load)))
		for _, f := range q.Load {
			args = append(args, "@"+f)
		}
	}

	if len(q.Order) > 0 {
		args = append(args, "SORTBY", strconv.Itoa(len(q.Order)*2))
		for _, k := range q.Order {
			dir := "ASC"
			if k.Desc {
				dir = "DESC"
			}
			args = append(args, "@"+k.Field, dir)
		}
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	return parseAggregateResult(raw)
}

// CountDocuments returns the number of documents matching the filter via
// FT.SEARCH with LIMIT 0 0. No ordering or pagination is applied.
func (s *Store) CountDocuments(ctx context.Context, index string, filter db.FilterExpr) (int, error) {
	if index == "" {
		return 0, fmt.Errorf("index name is required")
	}

	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(index, buildFilterQuery(filter), "LIMIT", "0", "0", "DIALECT", "2").
		Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// --- Result parsing ---

// parseAggregateResult parses an RESP2 FT.AGGREGATE reply:
// [count, row1, row2, ...] where each row is a flat name/value pair array.
// The leading count is not a reliable total under LIMIT and is ignored;
// totals come from CountDocuments.
func parseAggregateResult(raw []rueidis.RedisMessage) (*db.QueryResult, error) {
	if len(raw) == 0 {
		return &db.QueryResult{}, nil
	}

	entries := make([]db.DocEntry, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		entries = append(entries, db.DocEntry{Fields: parseFieldPairs(row)})
	}

	return &db.QueryResult{Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilterQuery translates a FilterExpr into an FT query string.
// An empty expression matches all documents.
func buildFilterQuery(f db.FilterExpr) string {
	if f.IsEmpty() {
		return "*"
	}

	parts := make([]string, 0, len(f.Conds()))
	for _, c := range f.Conds() {
		switch c.Op {
		case db.OpEqual:
			parts = append(parts, fmt.Sprintf("@%s:{%s}", c.Field, escapeTag(c.Value)))
		case db.OpPrefix:
			parts = append(parts, fmt.Sprintf("@%s:{%s*}", c.Field, escapeTag(c.Value)))
		}
	}

	return strings.Join(parts, " ")
}

func escapeTag(v string) string {
	return tagEscaper.Replace(v)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
