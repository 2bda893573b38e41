package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/diagrams/internal/diagram"
)

// Record is a diagram row as stored.
type Record struct {
	ID          string
	OwnerID     string
	Title       string
	Spec        diagram.Spec
	SpecKey     string
	ThumbnailID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store persists saved diagrams. Lookups of a missing id return ErrNotFound.
type Store interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, id string) error
}

// PGStore keeps diagrams in the diagrams table.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const recordColumns = `id, owner_id, title, spec, spec_key, COALESCE(thumbnail_id, ''), created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec  Record
		spec []byte
	)
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &spec, &rec.SpecKey, &rec.ThumbnailID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(spec, &rec.Spec); err != nil {
		return Record{}, fmt.Errorf("decode stored spec %s: %w", rec.ID, err)
	}
	return rec, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *PGStore) Insert(ctx context.Context, rec Record) (Record, error) {
	spec, err := json.Marshal(rec.Spec)
	if err != nil {
		return Record{}, fmt.Errorf("encode spec: %w", err)
	}
	return scanRecord(s.pool.QueryRow(ctx,
		`INSERT INTO diagrams (id, owner_id, title, spec, spec_key, thumbnail_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+recordColumns,
		rec.ID, rec.OwnerID, rec.Title, spec, rec.SpecKey, nullable(rec.ThumbnailID)))
}

func (s *PGStore) Get(ctx context.Context, id string) (Record, error) {
	return scanRecord(s.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM diagrams WHERE id = $1`, id))
}

func (s *PGStore) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM diagrams WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, rec Record) (Record, error) {
	spec, err := json.Marshal(rec.Spec)
	if err != nil {
		return Record{}, fmt.Errorf("encode spec: %w", err)
	}
	return scanRecord(s.pool.QueryRow(ctx,
		`UPDATE diagrams SET title = $2, spec = $3, spec_key = $4, thumbnail_id = $5, updated_at = now()
		 WHERE id = $1 RETURNING `+recordColumns,
		rec.ID, rec.Title, spec, rec.SpecKey, nullable(rec.ThumbnailID)))
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM diagrams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
