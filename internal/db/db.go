package db

import (
	"context"
	"time"
)

// Store is the document store facade. Consumers depend on the narrow
// sub-interfaces, not on Store itself.
type Store interface {
	Pinger
	HashStore
	IndexManager
	DocumentQuerier
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based document operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// DocumentQuerier runs filtered, ordered, paginated document queries.
//
// The store is only ever asked to execute native-safe predicates
// (equality/prefix) and to order by stored fields; anything beyond that is
// the caller's responsibility.
type DocumentQuerier interface {
	QueryDocuments(ctx context.Context, q *DocQuery) (*QueryResult, error)
	CountDocuments(ctx context.Context, index string, filter FilterExpr) (int, error)
}
