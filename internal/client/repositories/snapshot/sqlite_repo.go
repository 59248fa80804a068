package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/saveeat/saveeat-client/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Replace(ctx context.Context, owner string, rows []Row, savedAt time.Time) error {
	if err := r.Clear(ctx); err != nil {
		return err
	}

	query := `INSERT INTO snapshot (kind, id, owner, position, payload, saved_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(kind, id) DO UPDATE SET
				owner = excluded.owner,
				position = excluded.position,
				payload = excluded.payload,
				saved_at = excluded.saved_at`

	for i, row := range rows {
		_, err := r.db.ExecContext(ctx, query, string(row.Kind), row.ID, owner, i, row.Payload, savedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert snapshot %s %s: %w", row.Kind, row.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, owner string) ([]Row, error) {
	query := `SELECT kind, id, payload, saved_at FROM snapshot WHERE owner = ? ORDER BY kind, position`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshot: %w", err)
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		var (
			row     Row
			kind    string
			savedAt int64
		)
		if err := rows.Scan(&kind, &row.ID, &row.Payload, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		row.Kind = Kind(kind)
		row.SavedAt = time.Unix(savedAt, 0)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshot`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
