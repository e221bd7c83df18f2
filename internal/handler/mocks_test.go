package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mkarlis/roomcast/internal/model"
	"github.com/mkarlis/roomcast/internal/repository"
)

// fakeRegistry is an in-memory DeviceStore mirroring the store-level
// behavior the real repository gets from its unique indexes. Used by the
// lifecycle tests that exercise sequences (provision -> claim ->
// heartbeat) rather than single calls.
type fakeRegistry struct {
	devices map[string]*model.Device // by room id
	nextID  uint64
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{devices: map[string]*model.Device{}}
}

func (f *fakeRegistry) Provision(_ context.Context, roomID, name, code string) error {
	for room, d := range f.devices {
		if room != roomID && !d.IsPaired && d.PairingCode != nil && *d.PairingCode == code {
			return repository.ErrCodeTaken
		}
	}
	d, ok := f.devices[roomID]
	if !ok {
		f.nextID++
		d = &model.Device{ID: f.nextID, RoomID: roomID}
		f.devices[roomID] = d
	}
	d.Name = name
	d.PairingCode = &code
	d.TokenHash = nil
	d.DeviceUID = nil
	d.IsPaired = false
	d.Active = true
	return nil
}

func (f *fakeRegistry) GetByRoom(_ context.Context, roomID string) (model.Device, error) {
	if d, ok := f.devices[roomID]; ok {
		return *d, nil
	}
	return model.Device{}, repository.ErrNotFound
}

func (f *fakeRegistry) Claim(_ context.Context, code, deviceUID, tokenHash string) (model.Device, error) {
	for _, d := range f.devices {
		if d.Active && !d.IsPaired && d.PairingCode != nil && *d.PairingCode == code {
			now := time.Now().UTC()
			d.TokenHash = &tokenHash
			d.DeviceUID = &deviceUID
			d.PairingCode = nil
			d.IsPaired = true
			d.LastSeen = &now
			return *d, nil
		}
	}
	return model.Device{}, repository.ErrNotFound
}

func (f *fakeRegistry) Touch(_ context.Context, tokenHash string) (model.Device, error) {
	for _, d := range f.devices {
		if d.Active && d.TokenHash != nil && *d.TokenHash == tokenHash {
			now := time.Now().UTC()
			d.LastSeen = &now
			return *d, nil
		}
	}
	return model.Device{}, repository.ErrNotFound
}

func (f *fakeRegistry) Reassign(_ context.Context, tokenHash string, licenseeID uint64, roomID *string) (model.Device, error) {
	for room, d := range f.devices {
		if d.TokenHash != nil && *d.TokenHash == tokenHash {
			d.LicenseeID = licenseeID
			if roomID != nil {
				delete(f.devices, room)
				d.RoomID = *roomID
				f.devices[*roomID] = d
			}
			return *d, nil
		}
	}
	return model.Device{}, repository.ErrNotFound
}

func (f *fakeRegistry) List(_ context.Context) ([]model.Device, error) {
	out := make([]model.Device, 0, len(f.devices))
	for _, d := range f.devices {
		out = append(out, *d)
	}
	return out, nil
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	rooms map[string]model.RoomSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{rooms: map[string]model.RoomSession{}}
}

func (f *fakeSessionStore) Ensure(_ context.Context, roomID string) error {
	if _, ok := f.rooms[roomID]; !ok {
		f.rooms[roomID] = model.RoomSession{RoomID: roomID, State: model.StateIdle, UpdatedAt: time.Now().UTC()}
	}
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, roomID string) (model.RoomSession, error) {
	s, ok := f.rooms[roomID]
	if !ok {
		return model.RoomSession{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) Save(_ context.Context, s model.RoomSession) error {
	s.UpdatedAt = time.Now().UTC()
	f.rooms[s.RoomID] = s
	return nil
}

// Testify mocks for single-call expectations.

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) Provision(ctx context.Context, roomID, name, code string) error {
	return m.Called(ctx, roomID, name, code).Error(0)
}
func (m *mockDeviceStore) GetByRoom(ctx context.Context, roomID string) (model.Device, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(model.Device), args.Error(1)
}
func (m *mockDeviceStore) Claim(ctx context.Context, code, deviceUID, tokenHash string) (model.Device, error) {
	args := m.Called(ctx, code, deviceUID, tokenHash)
	return args.Get(0).(model.Device), args.Error(1)
}
func (m *mockDeviceStore) Touch(ctx context.Context, tokenHash string) (model.Device, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(model.Device), args.Error(1)
}
func (m *mockDeviceStore) Reassign(ctx context.Context, tokenHash string, licenseeID uint64, roomID *string) (model.Device, error) {
	args := m.Called(ctx, tokenHash, licenseeID, roomID)
	return args.Get(0).(model.Device), args.Error(1)
}
func (m *mockDeviceStore) List(ctx context.Context) ([]model.Device, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Device), args.Error(1)
}

type mockAccessStore struct{ mock.Mock }

func (m *mockAccessStore) Allowed(ctx context.Context, licenseeID uint64) ([]string, error) {
	args := m.Called(ctx, licenseeID)
	return args.Get(0).([]string), args.Error(1)
}
func (m *mockAccessStore) IsAllowed(ctx context.Context, licenseeID uint64, label string) (bool, error) {
	args := m.Called(ctx, licenseeID, label)
	return args.Bool(0), args.Error(1)
}
func (m *mockAccessStore) Replace(ctx context.Context, licenseeID uint64, labels []string) error {
	return m.Called(ctx, licenseeID, labels).Error(0)
}
func (m *mockAccessStore) Add(ctx context.Context, licenseeID uint64, label string) error {
	return m.Called(ctx, licenseeID, label).Error(0)
}
func (m *mockAccessStore) Remove(ctx context.Context, licenseeID uint64, label string) error {
	return m.Called(ctx, licenseeID, label).Error(0)
}

type mockVideoStore struct{ mock.Mock }

func (m *mockVideoStore) GetActiveByLabel(ctx context.Context, label string) (model.Video, error) {
	args := m.Called(ctx, label)
	return args.Get(0).(model.Video), args.Error(1)
}
func (m *mockVideoStore) ListActive(ctx context.Context) ([]model.Video, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Video), args.Error(1)
}
