package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkarlis/roomcast/internal/config"
	"github.com/mkarlis/roomcast/internal/model"
	"github.com/mkarlis/roomcast/internal/queue"
	"github.com/mkarlis/roomcast/internal/repository"
	queue_publisher "github.com/mkarlis/roomcast/internal/service"
	"github.com/mkarlis/roomcast/internal/utils"
)

// DeviceHandler bundles dependencies for the device lifecycle endpoints.
type DeviceHandler struct {
	Cfg      config.Config
	Devices  DeviceStore
	Sessions SessionStore
}

func NewDeviceHandler(cfg config.Config, d DeviceStore, s SessionStore) *DeviceHandler {
	return &DeviceHandler{Cfg: cfg, Devices: d, Sessions: s}
}

// ----- DTOs -----

type provisionReq struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}
type provisionResp struct {
	RoomID      string `json:"room_id"`
	Name        string `json:"name"`
	PairingCode string `json:"pairing_code"`
}
type claimReq struct {
	PairingCode string `json:"pairing_code"`
	DeviceID    string `json:"device_id"`
}
type claimResp struct {
	RoomID      string `json:"room_id"`
	DeviceToken string `json:"device_token"`
}
type heartbeatReq struct {
	DeviceToken string `json:"device_token"`
}
type reassignReq struct {
	DeviceToken string  `json:"device_token"`
	LicenseeID  uint64  `json:"licensee_id"`
	RoomID      *string `json:"room_id"`
}

// deviceResp is the admin view of a device. Pairing codes and token
// hashes never leave the registry through this shape.
type deviceResp struct {
	ID         uint64     `json:"id"`
	LicenseeID uint64     `json:"licensee_id"`
	RoomID     string     `json:"room_id"`
	Name       string     `json:"name"`
	DeviceUID  *string    `json:"device_uid,omitempty"`
	IsPaired   bool       `json:"is_paired"`
	Active     bool       `json:"active"`
	LastSeen   *time.Time `json:"last_seen"`
}

func toDeviceResp(d model.Device) deviceResp {
	return deviceResp{
		ID:         d.ID,
		LicenseeID: d.LicenseeID,
		RoomID:     d.RoomID,
		Name:       d.Name,
		DeviceUID:  d.DeviceUID,
		IsPaired:   d.IsPaired,
		Active:     d.Active,
		LastSeen:   d.LastSeen,
	}
}

// Provision handles POST /v1/devices/provision. It upserts the device row
// for a room with a freshly generated pairing code: re-provisioning a
// room rotates the code and voids the old token instead of creating a
// second device. The collision retry loop is an accelerator; the unique
// index in the store is the actual safety net, and an exhausted budget
// surfaces as 409 rather than a silent overwrite.
func (h *DeviceHandler) Provision(c echo.Context) error {
	var req provisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	roomID := strings.TrimSpace(req.RoomID)
	name := strings.TrimSpace(req.Name)
	if roomID == "" || name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id/name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var code string
	allocated := false
	for i := 0; i < h.Cfg.PairingAttempts; i++ {
		var err error
		code, err = utils.NewPairingCode(h.Cfg.PairingPrefix)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate code failed"})
		}
		err = h.Devices.Provision(ctx, roomID, name, code)
		if err == repository.ErrCodeTaken {
			continue
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "provision failed"})
		}
		allocated = true
		break
	}
	if !allocated {
		return c.JSON(http.StatusConflict, echo.Map{"error": "could not allocate unique pairing code"})
	}

	// The session row is born with the room.
	if err := h.Sessions.Ensure(ctx, roomID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}

	go func() {
		_ = queue_publisher.PublishRoomEvent(context.Background(), queue.DeviceLifecycleEvent{
			RoomID:     roomID,
			Action:     "provisioned",
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, provisionResp{RoomID: roomID, Name: name, PairingCode: code})
}

// Claim handles POST /v1/devices/claim, the one public endpoint of the
// lifecycle. It exchanges a pairing code for a fresh bearer token; the
// code is spent in the same statement, so exactly one claim can ever
// succeed for a given code and a second attempt sees 404.
func (h *DeviceHandler) Claim(c echo.Context) error {
	var req claimReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := strings.TrimSpace(req.PairingCode)
	deviceUID := strings.TrimSpace(req.DeviceID)
	if code == "" || deviceUID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pairing_code/device_id required"})
	}

	token, err := utils.NewDeviceToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Devices.Claim(ctx, code, deviceUID, utils.HashDeviceToken(token))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pairing code not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "claim failed"})
	}

	go func() {
		_ = queue_publisher.PublishRoomEvent(context.Background(), queue.DeviceLifecycleEvent{
			RoomID:     d.RoomID,
			Action:     "claimed",
			DeviceUID:  deviceUID,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	// The raw token is returned exactly once, here.
	return c.JSON(http.StatusOK, claimResp{RoomID: d.RoomID, DeviceToken: token})
}

// Heartbeat handles POST /v1/devices/heartbeat. The device authenticates
// with its bearer token (body field, or Authorization header as a
// convenience); each accepted ping stamps last_seen, so successive values
// are non-decreasing per device.
func (h *DeviceHandler) Heartbeat(c echo.Context) error {
	var req heartbeatReq
	_ = c.Bind(&req)
	token := strings.TrimSpace(req.DeviceToken)
	if token == "" {
		if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if token == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "device_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Devices.Touch(ctx, utils.HashDeviceToken(token))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid device token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "heartbeat failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_id": d.RoomID, "last_seen": d.LastSeen})
}

// Reassign handles POST /v1/devices/reassign (admin only). It moves a
// device to another licensee and optionally another room, ensuring the
// target room has a session row.
func (h *DeviceHandler) Reassign(c echo.Context) error {
	var req reassignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	token := strings.TrimSpace(req.DeviceToken)
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "device_token required"})
	}
	if req.RoomID != nil && strings.TrimSpace(*req.RoomID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id must not be empty"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Devices.Reassign(ctx, utils.HashDeviceToken(token), req.LicenseeID, req.RoomID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "device not found"})
		}
		if err == repository.ErrCodeTaken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room already has a device"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reassign failed"})
	}
	if req.RoomID != nil {
		if err := h.Sessions.Ensure(ctx, d.RoomID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
		}
	}

	go func() {
		_ = queue_publisher.PublishRoomEvent(context.Background(), queue.DeviceLifecycleEvent{
			RoomID:     d.RoomID,
			Action:     "reassigned",
			LicenseeID: d.LicenseeID,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusOK, toDeviceResp(d))
}

// List handles GET /v1/devices (admin only): the fleet view with pairing
// and liveness flags.
func (h *DeviceHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	devices, err := h.Devices.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]deviceResp, 0, len(devices))
	for _, d := range devices {
		items = append(items, toDeviceResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
