package query

// Path selects the execution strategy for a query.
type Path string

const (
	// PathNative executes filters, sort and pagination in the store.
	PathNative Path = "native"
	// PathInMemory fetches a bounded candidate set and finishes in process.
	PathInMemory Path = "in_memory"
)

// Plan is the classification outcome. Reason is diagnostic only and never
// affects behavior.
type Plan struct {
	Path   Path
	Reason string
}

// Classify decides whether a spec can run natively in the store or needs the
// in-memory path. Pure function of the spec; rules are checked in order and
// the first match wins.
func Classify(s Spec) Plan {
	if s.HasTagFilters() {
		return Plan{Path: PathInMemory, Reason: "tag filters need array membership checks"}
	}
	if s.RefURLSubstring() != "" {
		return Plan{Path: PathInMemory, Reason: "reference URL substring matches a nested array"}
	}
	if s.Keyword() != "" {
		return Plan{Path: PathInMemory, Reason: "keyword search has no native index"}
	}
	if s.SortField() == FieldTagCount {
		return Plan{Path: PathInMemory, Reason: "tagCount is a derived sort key"}
	}
	if s.SortField() == FieldHasAnswer {
		// The store still runs with a placeholder order on reviewedAt to
		// keep the fetch query valid; authoritative order is recomputed.
		return Plan{Path: PathInMemory, Reason: "hasAnswer is a derived sort key"}
	}
	return Plan{Path: PathNative, Reason: "all predicates and sort keys are store-native"}
}
