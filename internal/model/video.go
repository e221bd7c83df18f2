package model

import "time"

// Video is a catalog entry naming a playable item. The catalog is owned
// by an external content service; this application reads it to validate
// play commands and to list pickable labels. Labels are stored upper-cased.
type Video struct {
	ID          uint64    // videos.id
	Label       string    // videos.label
	PlaybackRef string    // videos.playback_ref
	SortOrder   int       // videos.sort_order
	Active      bool      // videos.active
	CreatedAt   time.Time // videos.created_at
}
