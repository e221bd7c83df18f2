package repository

import (
	"context"
	"database/sql"
	"strings"
)

// NormalizeLabel trims and upper-cases a video label so case variants
// never produce duplicate or missed allow-list entries.
func NormalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// AccessRepo persists the per-licensee video allow-list. Membership is
// the only semantics; labels are normalized before every comparison or
// write.
type AccessRepo struct{ DB *sql.DB }

func NewAccessRepo(db *sql.DB) *AccessRepo { return &AccessRepo{DB: db} }

// Allowed returns the licensee's labels in stable order.
func (r *AccessRepo) Allowed(ctx context.Context, licenseeID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT video_label FROM licensee_video_access WHERE licensee_id=? ORDER BY video_label",
		licenseeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	labels := []string{}
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// IsAllowed reports membership of a single label.
func (r *AccessRepo) IsAllowed(ctx context.Context, licenseeID uint64, label string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM licensee_video_access WHERE licensee_id=? AND video_label=? LIMIT 1",
		licenseeID, NormalizeLabel(label)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Replace swaps the whole allow-list in one transaction. Concurrent
// replaces for the same licensee race and the later commit wins in full;
// there is no merge.
func (r *AccessRepo) Replace(ctx context.Context, licenseeID uint64, labels []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM licensee_video_access WHERE licensee_id=?", licenseeID); err != nil {
		return err
	}
	for _, l := range normalizeSet(labels) {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO licensee_video_access (licensee_id, video_label) VALUES (?,?)",
			licenseeID, l); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// normalizeSet normalizes labels and drops empties and duplicates while
// preserving first-seen order, so "a1v1" and "A1V1" collapse to one
// entry before they reach the store.
func normalizeSet(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, raw := range labels {
		l := NormalizeLabel(raw)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// Add inserts one label; adding an existing label is a no-op.
func (r *AccessRepo) Add(ctx context.Context, licenseeID uint64, label string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO licensee_video_access (licensee_id, video_label) VALUES (?,?)",
		licenseeID, NormalizeLabel(label))
	return err
}

// Remove deletes one label; removing an absent label is a no-op.
func (r *AccessRepo) Remove(ctx context.Context, licenseeID uint64, label string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM licensee_video_access WHERE licensee_id=? AND video_label=?",
		licenseeID, NormalizeLabel(label))
	return err
}
