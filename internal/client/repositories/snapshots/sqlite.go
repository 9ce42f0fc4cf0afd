package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/common"
	"github.com/dmitrijs2005/agrisense/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Crop names are stored lower-cased so "Cotton" and "cotton" share a row.
func key(crop string) string {
	return strings.ToLower(strings.TrimSpace(crop))
}

func (r *SQLiteRepository) Save(ctx context.Context, crop string, payload []byte, fetchedAt time.Time) error {
	query := `INSERT INTO snapshots (crop, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(crop) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`
	if _, err := r.db.ExecContext(ctx, query, key(crop), payload, fetchedAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to save snapshot[%s]: %w", crop, err)
	}
	return nil
}

// Get returns common.ErrorNotFound when no snapshot exists for crop.
func (r *SQLiteRepository) Get(ctx context.Context, crop string) (*Snapshot, error) {
	var (
		s  = &Snapshot{}
		ms int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT crop, payload, fetched_at FROM snapshots WHERE crop = ?`, key(crop)).
		Scan(&s.Crop, &s.Payload, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot[%s]: %w", crop, err)
	}
	s.FetchedAt = time.UnixMilli(ms)
	return s, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, crop string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE crop = ?`, key(crop)); err != nil {
		return fmt.Errorf("failed to delete snapshot[%s]: %w", crop, err)
	}
	return nil
}

// List returns all snapshots, most recent first.
func (r *SQLiteRepository) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT crop, payload, fetched_at FROM snapshots ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var result []Snapshot
	for rows.Next() {
		var (
			s  Snapshot
			ms int64
		)
		if err := rows.Scan(&s.Crop, &s.Payload, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		s.FetchedAt = time.UnixMilli(ms)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot rows: %w", err)
	}
	return result, nil
}
