package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mkarlis/roomcast/internal/model"
)

// DeviceRepo persists playback devices. Pairing-code and token-hash
// uniqueness is enforced by unique indexes in the store; the repo surfaces
// violations as ErrCodeTaken so callers can retry with a fresh code.
type DeviceRepo struct{ DB *sql.DB }

func NewDeviceRepo(db *sql.DB) *DeviceRepo { return &DeviceRepo{DB: db} }

const deviceCols = "id,licensee_id,room_id,name,pairing_code,token_hash,device_uid,is_paired,active,last_seen,created_at,updated_at"

func scanDevice(row *sql.Row) (model.Device, error) {
	var d model.Device
	err := row.Scan(&d.ID, &d.LicenseeID, &d.RoomID, &d.Name, &d.PairingCode,
		&d.TokenHash, &d.DeviceUID, &d.IsPaired, &d.Active, &d.LastSeen,
		&d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Device{}, ErrNotFound
	}
	return d, err
}

// Provision upserts the device row for a room with a fresh pairing code.
// Re-provisioning rotates the code, voids any previously issued token and
// returns the device to the unpaired state. A deliberate two-statement
// shape: ON DUPLICATE KEY UPDATE would also fire on a pairing_code
// collision and silently rewrite the other room's device, so the room row
// is updated (or inserted) explicitly and a code collision surfaces as
// ErrCodeTaken from the unique index.
func (r *DeviceRepo) Provision(ctx context.Context, roomID, name, code string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE devices SET name=?, pairing_code=?, token_hash=NULL, device_uid=NULL, is_paired=0, active=1 WHERE room_id=?",
		name, code, roomID)
	if err != nil {
		if isDuplicate(err) {
			return ErrCodeTaken
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// No row for this room yet. If another provision for the same room won
	// the race, the insert hits uq_devices_room; report that as a code
	// conflict so the caller's retry loop re-runs the update path.
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO devices (licensee_id, room_id, name, pairing_code) VALUES (0,?,?,?)",
		roomID, name, code)
	if isDuplicate(err) {
		return ErrCodeTaken
	}
	return err
}

// GetByRoom fetches the device bound to a room.
func (r *DeviceRepo) GetByRoom(ctx context.Context, roomID string) (model.Device, error) {
	return scanDevice(r.DB.QueryRowContext(ctx,
		"SELECT "+deviceCols+" FROM devices WHERE room_id=? LIMIT 1", roomID))
}

// Claim consumes a pairing code: the matching active, unpaired device gets
// the new token hash, records the hardware uid, and has its code nulled so
// it can never be claimed twice. Returns ErrNotFound when no device
// matches, which covers both bad codes and already-claimed ones.
func (r *DeviceRepo) Claim(ctx context.Context, code, deviceUID, tokenHash string) (model.Device, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE devices SET token_hash=?, device_uid=?, pairing_code=NULL, is_paired=1, last_seen=NOW() WHERE pairing_code=? AND is_paired=0 AND active=1",
		tokenHash, deviceUID, code)
	if err != nil {
		return model.Device{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Device{}, err
	}
	if n == 0 {
		return model.Device{}, ErrNotFound
	}
	return scanDevice(r.DB.QueryRowContext(ctx,
		"SELECT "+deviceCols+" FROM devices WHERE token_hash=? LIMIT 1", tokenHash))
}

// GetActiveByTokenHash authenticates a bearer token hash against an
// active device. Every request re-authenticates here; there is no cached
// in-memory session.
func (r *DeviceRepo) GetActiveByTokenHash(ctx context.Context, tokenHash string) (model.Device, error) {
	return scanDevice(r.DB.QueryRowContext(ctx,
		"SELECT "+deviceCols+" FROM devices WHERE token_hash=? AND active=1 LIMIT 1", tokenHash))
}

// Touch stamps last_seen for an authenticated heartbeat and returns the
// refreshed row. NOW() keeps last_seen non-decreasing per device.
func (r *DeviceRepo) Touch(ctx context.Context, tokenHash string) (model.Device, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE devices SET last_seen=NOW() WHERE token_hash=? AND active=1", tokenHash)
	if err != nil {
		return model.Device{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Device{}, err
	} else if n == 0 {
		return model.Device{}, ErrNotFound
	}
	return r.GetActiveByTokenHash(ctx, tokenHash)
}

// Reassign moves a device identified by token hash to another licensee
// and, optionally, another room.
func (r *DeviceRepo) Reassign(ctx context.Context, tokenHash string, licenseeID uint64, roomID *string) (model.Device, error) {
	set := "licensee_id=?"
	args := []any{licenseeID}
	if roomID != nil {
		set += ", room_id=?"
		args = append(args, strings.TrimSpace(*roomID))
	}
	args = append(args, tokenHash)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE devices SET "+set+" WHERE token_hash=?", args...); err != nil {
		if isDuplicate(err) {
			return model.Device{}, ErrCodeTaken
		}
		return model.Device{}, err
	}
	// Zero rows affected can mean the values already matched, so existence
	// is decided by the lookup, not by RowsAffected.
	return scanDevice(r.DB.QueryRowContext(ctx,
		"SELECT "+deviceCols+" FROM devices WHERE token_hash=? LIMIT 1", tokenHash))
}

// List returns all devices ordered by room for the fleet view.
func (r *DeviceRepo) List(ctx context.Context) ([]model.Device, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+deviceCols+" FROM devices ORDER BY room_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Device
	for rows.Next() {
		var d model.Device
		if err := rows.Scan(&d.ID, &d.LicenseeID, &d.RoomID, &d.Name, &d.PairingCode,
			&d.TokenHash, &d.DeviceUID, &d.IsPaired, &d.Active, &d.LastSeen,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
