package repository

import (
	"context"
	"database/sql"

	"github.com/mkarlis/roomcast/internal/model"
)

// VideoRepo reads the video catalog. The catalog itself is owned by an
// external content service; this application only resolves labels and
// lists pickable entries.
type VideoRepo struct{ DB *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{DB: db} }

// GetActiveByLabel resolves a normalized label to an active catalog entry.
func (r *VideoRepo) GetActiveByLabel(ctx context.Context, label string) (model.Video, error) {
	var v model.Video
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,label,playback_ref,sort_order,active,created_at FROM videos WHERE label=? AND active=1 LIMIT 1",
		NormalizeLabel(label)).Scan(&v.ID, &v.Label, &v.PlaybackRef, &v.SortOrder, &v.Active, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Video{}, ErrNotFound
	}
	return v, err
}

// ListActive returns active catalog entries in display order.
func (r *VideoRepo) ListActive(ctx context.Context) ([]model.Video, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,label,playback_ref,sort_order,active,created_at FROM videos WHERE active=1 ORDER BY sort_order, label")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Video
	for rows.Next() {
		var v model.Video
		if err := rows.Scan(&v.ID, &v.Label, &v.PlaybackRef, &v.SortOrder, &v.Active, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
