package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mkarlis/roomcast/internal/config"
	"github.com/mkarlis/roomcast/internal/model"
	"github.com/mkarlis/roomcast/internal/repository"
)

var testCfg = config.Config{
	Env:             "test",
	JWTSecret:       "test-secret",
	AccessTTLMin:    15,
	PairingPrefix:   "TV-",
	PairingAttempts: 10,
}

// newJSONContext builds an echo context for a JSON request plus the
// recorder capturing the response.
func newJSONContext(t *testing.T, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return echo.New().NewContext(req, rr), rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
}

func TestDeviceLifecycleScenario(t *testing.T) {
	registry := newFakeRegistry()
	sessions := newFakeSessionStore()
	h := NewDeviceHandler(testCfg, registry, sessions)

	// Provision room7.
	c, rr := newJSONContext(t, http.MethodPost, "/v1/devices/provision",
		provisionReq{RoomID: "room7", Name: "Lobby TV"})
	assert.NoError(t, h.Provision(c))
	assert.Equal(t, http.StatusCreated, rr.Code)
	var prov provisionResp
	decodeBody(t, rr, &prov)
	assert.Equal(t, "room7", prov.RoomID)
	assert.Regexp(t, `^TV-\d{4}$`, prov.PairingCode)

	// Provisioning creates the idle session row.
	s, err := sessions.Get(c.Request().Context(), "room7")
	assert.NoError(t, err)
	assert.Equal(t, model.StateIdle, s.State)

	// Claim with the code and a physical device id.
	c, rr = newJSONContext(t, http.MethodPost, "/v1/devices/claim",
		claimReq{PairingCode: prov.PairingCode, DeviceID: "dev-42"})
	assert.NoError(t, h.Claim(c))
	assert.Equal(t, http.StatusOK, rr.Code)
	var claim claimResp
	decodeBody(t, rr, &claim)
	assert.Equal(t, "room7", claim.RoomID)
	assert.Len(t, claim.DeviceToken, 64)

	// A second claim of the same code fails: the code is spent.
	c, rr = newJSONContext(t, http.MethodPost, "/v1/devices/claim",
		claimReq{PairingCode: prov.PairingCode, DeviceID: "dev-43"})
	assert.NoError(t, h.Claim(c))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Heartbeat with the issued token returns room7 and stamps last_seen.
	c, rr = newJSONContext(t, http.MethodPost, "/v1/devices/heartbeat",
		heartbeatReq{DeviceToken: claim.DeviceToken})
	assert.NoError(t, h.Heartbeat(c))
	assert.Equal(t, http.StatusOK, rr.Code)
	var hb1 struct {
		RoomID   string     `json:"room_id"`
		LastSeen *time.Time `json:"last_seen"`
	}
	decodeBody(t, rr, &hb1)
	assert.Equal(t, "room7", hb1.RoomID)
	assert.NotNil(t, hb1.LastSeen)

	// last_seen is non-decreasing across successive heartbeats.
	c, rr = newJSONContext(t, http.MethodPost, "/v1/devices/heartbeat",
		heartbeatReq{DeviceToken: claim.DeviceToken})
	assert.NoError(t, h.Heartbeat(c))
	var hb2 struct {
		LastSeen *time.Time `json:"last_seen"`
	}
	decodeBody(t, rr, &hb2)
	assert.False(t, hb2.LastSeen.Before(*hb1.LastSeen), "last_seen must be non-decreasing")

	// A fabricated token is rejected.
	c, rr = newJSONContext(t, http.MethodPost, "/v1/devices/heartbeat",
		heartbeatReq{DeviceToken: "deadbeef"})
	assert.NoError(t, h.Heartbeat(c))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProvisionRotatesCredentials(t *testing.T) {
	registry := newFakeRegistry()
	h := NewDeviceHandler(testCfg, registry, newFakeSessionStore())

	c, rr := newJSONContext(t, http.MethodPost, "/v1/devices/provision",
		provisionReq{RoomID: "room1", Name: "TV"})
	assert.NoError(t, h.Provision(c))
	var first provisionResp
	decodeBody(t, rr, &first)

	// Claim, then re-provision the same room: one device per room, reset
	// to unpaired with the old token voided.
	c, _ = newJSONContext(t, http.MethodPost, "/v1/devices/claim",
		claimReq{PairingCode: first.PairingCode, DeviceID: "dev-1"})
	assert.NoError(t, h.Claim(c))

	c, rr = newJSONContext(t, http.MethodPost, "/v1/devices/provision",
		provisionReq{RoomID: "room1", Name: "TV"})
	assert.NoError(t, h.Provision(c))
	assert.Equal(t, http.StatusCreated, rr.Code)

	d, err := registry.GetByRoom(c.Request().Context(), "room1")
	assert.NoError(t, err)
	assert.False(t, d.IsPaired)
	assert.Nil(t, d.TokenHash, "re-provisioning must void the issued token")
	assert.NotNil(t, d.PairingCode)
	assert.Len(t, registry.devices, 1, "re-provisioning must not create a second device")
}

func TestProvisionCodeCollisionExhaustsBudget(t *testing.T) {
	devices := &mockDeviceStore{}
	defer devices.AssertExpectations(t)
	devices.On("Provision", mock.Anything, "room9", "TV", mock.Anything).
		Return(repository.ErrCodeTaken)

	h := NewDeviceHandler(testCfg, devices, newFakeSessionStore())
	c, rr := newJSONContext(t, http.MethodPost, "/v1/devices/provision",
		provisionReq{RoomID: "room9", Name: "TV"})
	assert.NoError(t, h.Provision(c))

	assert.Equal(t, http.StatusConflict, rr.Code, "an exhausted retry budget is a conflict, not a silent overwrite")
	devices.AssertNumberOfCalls(t, "Provision", testCfg.PairingAttempts)
}

func TestProvisionValidation(t *testing.T) {
	h := NewDeviceHandler(testCfg, newFakeRegistry(), newFakeSessionStore())
	tcases := []struct {
		name string
		req  provisionReq
	}{
		{name: "missing room_id", req: provisionReq{Name: "TV"}},
		{name: "missing name", req: provisionReq{RoomID: "room1"}},
		{name: "blank fields", req: provisionReq{RoomID: "  ", Name: " "}},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			c, rr := newJSONContext(t, http.MethodPost, "/v1/devices/provision", tc.req)
			assert.NoError(t, h.Provision(c))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestReassignUnknownToken(t *testing.T) {
	h := NewDeviceHandler(testCfg, newFakeRegistry(), newFakeSessionStore())
	c, rr := newJSONContext(t, http.MethodPost, "/v1/devices/reassign",
		reassignReq{DeviceToken: "deadbeef", LicenseeID: 2})
	assert.NoError(t, h.Reassign(c))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
