package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"emoji-quiz-service/internal/infra/docstore"
)

// DocumentStore is an in-memory docstore.DocumentStore, used for tests and
// for running the server without Postgres.
type DocumentStore struct {
	mu      sync.RWMutex
	docs    map[string]map[string]map[string]any
	records map[string][]appendEntry
}

type appendEntry struct {
	at     time.Time
	fields map[string]any
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:    make(map[string]map[string]map[string]any),
		records: make(map[string][]appendEntry),
	}
}

func (s *DocumentStore) FetchAll(_ context.Context, collection string) ([]docstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.docs[collection]))
	for id := range s.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]docstore.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, docstore.Record{ID: id, Fields: copyFields(s.docs[collection][id])})
	}
	return out, nil
}

func (s *DocumentStore) FetchOne(_ context.Context, collection, id string) (docstore.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.docs[collection][id]
	if !ok {
		return docstore.Record{}, false, nil
	}
	return docstore.Record{ID: id, Fields: copyFields(fields)}, true, nil
}

func (s *DocumentStore) SetFields(_ context.Context, collection, id string, fields map[string]any, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.docLocked(collection, id)
	if !merge {
		doc = make(map[string]any)
		s.docs[collection][id] = doc
	}
	for key, value := range fields {
		doc[key] = value
	}
	return nil
}

func (s *DocumentStore) AppendRecord(_ context.Context, collection string, at time.Time, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[collection] = append(s.records[collection], appendEntry{at: at, fields: copyFields(fields)})
	return nil
}

func (s *DocumentStore) FetchSince(_ context.Context, collection string, since time.Time) ([]docstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]docstore.Record, 0)
	for _, entry := range s.records[collection] {
		if entry.at.Before(since) {
			continue
		}
		out = append(out, docstore.Record{Fields: copyFields(entry.fields)})
	}
	return out, nil
}

func (s *DocumentStore) Increment(_ context.Context, collection, id, field string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.docLocked(collection, id)
	doc[field] = numeric(doc[field]) + delta
	return nil
}

func (s *DocumentStore) UnionAppend(_ context.Context, collection, id, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.docLocked(collection, id)
	existing, _ := doc[field].([]any)
	for _, item := range existing {
		if item == any(value) {
			return nil
		}
	}
	doc[field] = append(existing, value)
	return nil
}

// docLocked returns the document's field map, creating the document (and its
// collection) on first write.
func (s *DocumentStore) docLocked(collection, id string) map[string]any {
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]map[string]any)
	}
	if s.docs[collection][id] == nil {
		s.docs[collection][id] = make(map[string]any)
	}
	return s.docs[collection][id]
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = value
	}
	return out
}

func numeric(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
