package domain

import "errors"

var (
	// ErrItemNotFound signals a missing item.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidSortField signals an unsupported sort field or direction.
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrInvalidFilter signals a filter value outside the known domain.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidPagination signals limit or offset outside allowed bounds.
	ErrInvalidPagination = errors.New("invalid pagination bounds")
	// ErrStoreUnavailable signals a transient storage failure; callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
