// Package docstore defines the narrow document-store interface the game
// persists through, plus the typed repositories built on top of it.
// Collection names are slash-separated paths mirroring a document DB:
// `users`, `users/{id}/scores`, `users/{id}/games`,
// `categories/{name}/questions`.
package docstore

import (
	"context"
	"time"
)

// Record is one fetched document.
type Record struct {
	ID     string
	Fields map[string]any
}

// DocumentStore is the persistence collaborator. Every operation is fallible
// and asynchronous; implementations wrap transient failures in
// domain.ErrStore so callers can apply bounded retries.
type DocumentStore interface {
	FetchAll(ctx context.Context, collection string) ([]Record, error)
	FetchOne(ctx context.Context, collection, id string) (Record, bool, error)
	// SetFields writes fields on a document, merging with existing fields
	// when merge is true and replacing the document otherwise.
	SetFields(ctx context.Context, collection, id string, fields map[string]any, merge bool) error
	// AppendRecord appends an immutable fact at the given instant; the
	// instant is what FetchSince filters on, server-side.
	AppendRecord(ctx context.Context, collection string, at time.Time, fields map[string]any) error
	FetchSince(ctx context.Context, collection string, since time.Time) ([]Record, error)
	// Increment atomically adds delta to a numeric field, treating a missing
	// field or document as zero.
	Increment(ctx context.Context, collection, id, field string, delta int) error
	// UnionAppend appends value to an array field only if not yet present.
	UnionAppend(ctx context.Context, collection, id, field, value string) error
}
