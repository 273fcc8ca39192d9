package query

import (
	"strings"
	"time"

	"github.com/curatehq/curator/internal/domain/item"
)

// Field is a logical sort key over items.
type Field string

const (
	// FieldReviewedAt sorts by review timestamp.
	FieldReviewedAt Field = "reviewedAt"
	// FieldUpdatedAt sorts by last modification timestamp.
	FieldUpdatedAt Field = "updatedAt"
	// FieldID sorts by item identifier.
	FieldID Field = "id"
	// FieldHasAnswer sorts by presence of a non-empty answer (derived).
	FieldHasAnswer Field = "hasAnswer"
	// FieldTotalReferences sorts by stored reference count.
	FieldTotalReferences Field = "totalReferences"
	// FieldTagCount sorts by size of the tag union (derived).
	FieldTagCount Field = "tagCount"
)

// IsValid reports whether f is a supported sort field.
func (f Field) IsValid() bool {
	switch f {
	case FieldReviewedAt, FieldUpdatedAt, FieldID,
		FieldHasAnswer, FieldTotalReferences, FieldTagCount:
		return true
	}
	return false
}

// Direction is a sort direction.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "asc"
	// Desc sorts descending.
	Desc Direction = "desc"
)

// IsValid reports whether d is a supported direction.
func (d Direction) IsValid() bool {
	return d == Asc || d == Desc
}

// Comparator builds a total-order comparison function for the given sort
// field and direction. Every comparator ends with an ascending tiebreak on
// id, so ordering is fully deterministic for any item set.
//
// Missing timestamps sort after all present values in both directions, which
// keeps tiebreak semantics direction-independent. For the derived keys
// hasAnswer and tagCount, the secondary key is reviewedAt if present, else
// updatedAt, compared newest-first regardless of direction.
func Comparator(f Field, d Direction) func(a, b item.Item) int {
	desc := d == Desc
	switch f {
	case FieldReviewedAt:
		return func(a, b item.Item) int {
			if c := compareTimePtr(a.ReviewedAt(), b.ReviewedAt(), desc); c != 0 {
				return c
			}
			return strings.Compare(a.ID(), b.ID())
		}
	case FieldUpdatedAt:
		return func(a, b item.Item) int {
			if c := compareTime(a.UpdatedAt(), b.UpdatedAt(), desc); c != 0 {
				return c
			}
			return strings.Compare(a.ID(), b.ID())
		}
	case FieldTotalReferences:
		return func(a, b item.Item) int {
			if c := compareInt(a.TotalReferences(), b.TotalReferences(), desc); c != 0 {
				return c
			}
			return strings.Compare(a.ID(), b.ID())
		}
	case FieldHasAnswer:
		return func(a, b item.Item) int {
			if c := compareInt(boolKey(a.HasAnswer()), boolKey(b.HasAnswer()), desc); c != 0 {
				return c
			}
			return compareActivity(a, b)
		}
	case FieldTagCount:
		return func(a, b item.Item) int {
			if c := compareInt(a.TagCount(), b.TagCount(), desc); c != 0 {
				return c
			}
			return compareActivity(a, b)
		}
	case FieldID:
		return func(a, b item.Item) int {
			if desc {
				return strings.Compare(b.ID(), a.ID())
			}
			return strings.Compare(a.ID(), b.ID())
		}
	}
	// Unreachable for validated specs; fall back to the stable id order.
	return func(a, b item.Item) int {
		return strings.Compare(a.ID(), b.ID())
	}
}

// compareActivity orders by reviewedAt-else-updatedAt newest-first, then id.
func compareActivity(a, b item.Item) int {
	at := activityTime(a)
	bt := activityTime(b)
	if c := compareTime(at, bt, true); c != 0 {
		return c
	}
	return strings.Compare(a.ID(), b.ID())
}

func activityTime(i item.Item) time.Time {
	if r := i.ReviewedAt(); r != nil {
		return *r
	}
	return i.UpdatedAt()
}

func boolKey(v bool) int {
	if v {
		return 1
	}
	return 0
}

func compareTimePtr(a, b *time.Time, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return compareTime(*a, *b, desc)
}

func compareTime(a, b time.Time, desc bool) int {
	if a.Equal(b) {
		return 0
	}
	before := a.Before(b)
	if desc {
		before = !before
	}
	if before {
		return -1
	}
	return 1
}

func compareInt(a, b int, desc bool) int {
	if a == b {
		return 0
	}
	less := a < b
	if desc {
		less = !less
	}
	if less {
		return -1
	}
	return 1
}
