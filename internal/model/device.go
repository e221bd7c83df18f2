package model

import "time"

// Device represents one physical playback station bound to a room.
// A device is created unpaired with a fresh pairing code; claiming the
// code issues a bearer token (stored hashed) and marks it paired.
// Re-provisioning the same room rotates the code and invalidates the
// previous token instead of creating a duplicate row.
//
// Fields:
//  ID          – primary key identifier.
//  LicenseeID  – licensee the device is assigned to (0 = unassigned).
//  RoomID      – room this device drives; unique across devices.
//  Name        – human-chosen display name.
//  PairingCode – short claim secret; nil once the device is claimed.
//  TokenHash   – SHA-256 hex of the bearer token; nil until claimed.
//  DeviceUID   – self-reported hardware identifier, kept for audit.
//  IsPaired    – whether the pairing code has been claimed.
//  Active      – soft-delete flag; inactive devices cannot authenticate.
//  LastSeen    – timestamp of the last authenticated heartbeat.
type Device struct {
	ID          uint64     // devices.id
	LicenseeID  uint64     // devices.licensee_id
	RoomID      string     // devices.room_id
	Name        string     // devices.name
	PairingCode *string    // devices.pairing_code (nullable)
	TokenHash   *string    // devices.token_hash (nullable)
	DeviceUID   *string    // devices.device_uid (nullable)
	IsPaired    bool       // devices.is_paired
	Active      bool       // devices.active
	LastSeen    *time.Time // devices.last_seen (nullable)
	CreatedAt   time.Time  // devices.created_at
	UpdatedAt   time.Time  // devices.updated_at
}
