// Package handler contains the HTTP handlers for the control service.
// Handlers depend on narrow store interfaces, satisfied by the repository
// types in production and by mocks in tests.
package handler

import (
	"context"

	"github.com/mkarlis/roomcast/internal/model"
	"github.com/mkarlis/roomcast/internal/repository"
)

// DeviceStore is the registry surface the device handlers need.
type DeviceStore interface {
	Provision(ctx context.Context, roomID, name, code string) error
	GetByRoom(ctx context.Context, roomID string) (model.Device, error)
	Claim(ctx context.Context, code, deviceUID, tokenHash string) (model.Device, error)
	Touch(ctx context.Context, tokenHash string) (model.Device, error)
	Reassign(ctx context.Context, tokenHash string, licenseeID uint64, roomID *string) (model.Device, error)
	List(ctx context.Context) ([]model.Device, error)
}

// SessionStore owns the authoritative per-room playback state.
type SessionStore interface {
	Ensure(ctx context.Context, roomID string) error
	Get(ctx context.Context, roomID string) (model.RoomSession, error)
	Save(ctx context.Context, s model.RoomSession) error
}

// AccessStore is the per-licensee video allow-list.
type AccessStore interface {
	Allowed(ctx context.Context, licenseeID uint64) ([]string, error)
	IsAllowed(ctx context.Context, licenseeID uint64, label string) (bool, error)
	Replace(ctx context.Context, licenseeID uint64, labels []string) error
	Add(ctx context.Context, licenseeID uint64, label string) error
	Remove(ctx context.Context, licenseeID uint64, label string) error
}

// VideoStore resolves catalog labels.
type VideoStore interface {
	GetActiveByLabel(ctx context.Context, label string) (model.Video, error)
	ListActive(ctx context.Context) ([]model.Video, error)
}

// UserStore looks up operator accounts for login.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (repository.User, error)
}
