package repository

import (
	"context"
	"database/sql"

	"github.com/mkarlis/roomcast/internal/model"
)

// SessionRepo persists the one authoritative RoomSession row per room.
// Transitions are computed on the model and written back whole-row, so a
// racing pair of commands resolves to whichever write commits last.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Ensure creates the idle session row for a room if it does not exist.
// Called at provision time; a no-op for already-provisioned rooms.
func (r *SessionRepo) Ensure(ctx context.Context, roomID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO room_sessions (room_id, state) VALUES (?, 'idle')",
		roomID)
	return err
}

// Get fetches the session for a room; ErrNotFound only when the room has
// never been provisioned.
func (r *SessionRepo) Get(ctx context.Context, roomID string) (model.RoomSession, error) {
	var s model.RoomSession
	err := r.DB.QueryRowContext(ctx,
		"SELECT room_id,state,playback_ref,started_at,paused_at,updated_at FROM room_sessions WHERE room_id=? LIMIT 1",
		roomID).Scan(&s.RoomID, &s.State, &s.PlaybackRef, &s.StartedAt, &s.PausedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.RoomSession{}, ErrNotFound
	}
	return s, err
}

// Save writes the full session row. Last write wins.
func (r *SessionRepo) Save(ctx context.Context, s model.RoomSession) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE room_sessions SET state=?, playback_ref=?, started_at=?, paused_at=? WHERE room_id=?",
		s.State, s.PlaybackRef, s.StartedAt, s.PausedAt, s.RoomID)
	if err != nil {
		return err
	}
	// RowsAffected is 0 both for a missing room and for an identical
	// rewrite; only the former is an error, and Get has already settled
	// existence for every caller, so nothing to check here.
	_, _ = res.RowsAffected()
	return nil
}
