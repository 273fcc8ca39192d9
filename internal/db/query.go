package db

// FilterOp enumerates the predicate kinds the store can execute natively.
type FilterOp int

const (
	// OpEqual is an exact-match predicate on a tag field.
	OpEqual FilterOp = iota
	// OpPrefix is a prefix-match predicate on a tag field.
	OpPrefix
)

// FilterCond is a single native-safe predicate.
type FilterCond struct {
	Field string
	Value string
	Op    FilterOp
}

// FilterExpr is a conjunction of native-safe predicates. The engine never
// pushes array-membership, substring or derived-key predicates here.
type FilterExpr struct {
	conds []FilterCond
}

// Conds returns the predicate list.
func (f FilterExpr) Conds() []FilterCond { return f.conds }

// IsEmpty reports whether the expression has no predicates.
func (f FilterExpr) IsEmpty() bool { return len(f.conds) == 0 }

// OrderKey is one ORDER BY level.
type OrderKey struct {
	Field string
	Desc  bool
}

// DocQuery is a filtered, ordered, paginated document fetch.
type DocQuery struct {
	Index  string
	Filter FilterExpr
	Order  []OrderKey
	Load   []string // document fields to return
	Offset int
	Limit  int
}

// QueryResult is the output of QueryDocuments.
type QueryResult struct {
	Entries []DocEntry
}

// DocEntry is one document row, keyed by field name.
type DocEntry struct {
	Fields map[string]string
}
