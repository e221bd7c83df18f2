package model

import "time"

// Session states. A room session cycles between these for the life of the
// room; there is no terminal state.
const (
	StateIdle    = "idle"
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateStopped = "stopped"
)

// RoomSession is the single authoritative playback-state record for a
// room. Exactly one row exists per provisioned room. Writes are whole-row
// and last-write-wins: two racing commands resolve to whichever commits
// later, which is accepted at human command rates.
//
// Fields:
//  RoomID      – room identifier, primary key.
//  State       – idle | playing | paused | stopped.
//  PlaybackRef – label of the loaded video; nil unless playing or paused.
//  StartedAt   – when the current playback started; kept across pause so
//                a resume can reconstruct elapsed position.
//  PausedAt    – when playback was paused; nil otherwise.
type RoomSession struct {
	RoomID      string     // room_sessions.room_id
	State       string     // room_sessions.state
	PlaybackRef *string    // room_sessions.playback_ref (nullable)
	StartedAt   *time.Time // room_sessions.started_at (nullable)
	PausedAt    *time.Time // room_sessions.paused_at (nullable)
	UpdatedAt   time.Time  // room_sessions.updated_at
}

// Play loads a label and starts playback. Valid from any state; a resume
// after pause gets a fresh StartedAt rather than reusing the original.
func (s *RoomSession) Play(label string, now time.Time) {
	s.State = StatePlaying
	s.PlaybackRef = &label
	s.StartedAt = &now
	s.PausedAt = nil
}

// Pause suspends playback. Only effective while playing; from any other
// state it is a permissive no-op that still counts as success. Returns
// whether state changed.
func (s *RoomSession) Pause(now time.Time) bool {
	if s.State != StatePlaying {
		return false
	}
	s.State = StatePaused
	s.PausedAt = &now
	return true
}

// Stop halts playback and unloads the video. Valid from any state; clears
// the playback reference and both timestamps.
func (s *RoomSession) Stop() {
	s.State = StateStopped
	s.PlaybackRef = nil
	s.StartedAt = nil
	s.PausedAt = nil
}
