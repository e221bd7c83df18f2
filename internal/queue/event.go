// Package queue defines message payloads exchanged over the message broker.
package queue

// RoomEventsQueue is the durable queue carrying session transitions and
// device lifecycle changes for the audit trail.
const RoomEventsQueue = "room.events"

// SessionCommandEvent is published after every accepted playback command.
// For seek_delta this event is the only trace of the command: seek is not
// reflected in stored state, so a poller whose tick lands after a later
// write never observes it. Fire-and-forget, not guaranteed delivered.
type SessionCommandEvent struct {
	RoomID     string `json:"room_id"`
	Command    string `json:"command"`
	VideoLabel string `json:"video_label,omitempty"`
	Seconds    int    `json:"seconds,omitempty"`
	State      string `json:"state"`
	OccurredAt string `json:"occurred_at"`
}

// DeviceLifecycleEvent is published when a device is provisioned, claimed
// or reassigned. Pairing codes and tokens are deliberately absent.
type DeviceLifecycleEvent struct {
	RoomID     string `json:"room_id"`
	Action     string `json:"action"` // provisioned | claimed | reassigned
	DeviceUID  string `json:"device_uid,omitempty"`
	LicenseeID uint64 `json:"licensee_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
