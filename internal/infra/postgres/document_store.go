package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"emoji-quiz-service/internal/domain"
	"emoji-quiz-service/internal/infra/docstore"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DocumentStore implements docstore.DocumentStore over two JSONB tables:
// `documents` keyed by (collection, id) and an append-only `records` table
// filtered server-side by recorded_at.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) FetchAll(ctx context.Context, collection string) ([]docstore.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, data FROM documents WHERE collection=$1 ORDER BY id`, collection)
	if err != nil {
		return nil, storeErr("fetch all", err)
	}
	defer rows.Close()

	var out []docstore.Record
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, storeErr("scan document", err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Record{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate documents", err)
	}
	return out, nil
}

func (s *DocumentStore) FetchOne(ctx context.Context, collection, id string) (docstore.Record, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection=$1 AND id=$2`, collection, id).Scan(&raw)
	if err == pgx.ErrNoRows {
		return docstore.Record{}, false, nil
	}
	if err != nil {
		return docstore.Record{}, false, storeErr("fetch one", err)
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return docstore.Record{}, false, err
	}
	return docstore.Record{ID: id, Fields: fields}, true, nil
}

func (s *DocumentStore) SetFields(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	query := `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`
	if merge {
		query = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
			ON CONFLICT (collection, id) DO UPDATE SET data = documents.data || EXCLUDED.data`
	}
	if _, err := s.pool.Exec(ctx, query, collection, id, data); err != nil {
		return storeErr("set fields", err)
	}
	return nil
}

func (s *DocumentStore) AppendRecord(ctx context.Context, collection string, at time.Time, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO records (collection, recorded_at, data) VALUES ($1, $2, $3)`,
		collection, at, data)
	if err != nil {
		return storeErr("append record", err)
	}
	return nil
}

func (s *DocumentStore) FetchSince(ctx context.Context, collection string, since time.Time) ([]docstore.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM records WHERE collection=$1 AND recorded_at >= $2 ORDER BY seq`,
		collection, since)
	if err != nil {
		return nil, storeErr("fetch since", err)
	}
	defer rows.Close()

	var out []docstore.Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, storeErr("scan record", err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Record{Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate records", err)
	}
	return out, nil
}

func (s *DocumentStore) Increment(ctx context.Context, collection, id, field string, delta int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, jsonb_build_object($3::text, $4::bigint))
		ON CONFLICT (collection, id) DO UPDATE SET data = jsonb_set(
			documents.data,
			ARRAY[$3::text],
			to_jsonb(COALESCE((documents.data->>$3)::bigint, 0) + $4)
		)`, collection, id, field, delta)
	if err != nil {
		return storeErr("increment", err)
	}
	return nil
}

func (s *DocumentStore) UnionAppend(ctx context.Context, collection, id, field, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, jsonb_build_object($3::text, jsonb_build_array($4::text)))
		ON CONFLICT (collection, id) DO UPDATE SET data = jsonb_set(
			documents.data,
			ARRAY[$3::text],
			CASE
				WHEN COALESCE(documents.data->$3, '[]'::jsonb) @> jsonb_build_array($4::text)
					THEN COALESCE(documents.data->$3, '[]'::jsonb)
				ELSE COALESCE(documents.data->$3, '[]'::jsonb) || jsonb_build_array($4::text)
			END
		)`, collection, id, field, value)
	if err != nil {
		return storeErr("union append", err)
	}
	return nil
}

func decodeFields(raw []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, storeErr("unmarshal document", err)
	}
	return fields, nil
}

// storeErr tags failures as transient store errors so callers can apply
// their bounded retry.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
}
