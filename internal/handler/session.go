package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkarlis/roomcast/internal/model"
	"github.com/mkarlis/roomcast/internal/queue"
	"github.com/mkarlis/roomcast/internal/repository"
	queue_publisher "github.com/mkarlis/roomcast/internal/service"
)

// SessionHandler serves the per-room playback state: the polled read and
// the imperative command surface that mutates it.
type SessionHandler struct {
	Sessions SessionStore
	Access   AccessStore
	Videos   VideoStore
}

func NewSessionHandler(s SessionStore, a AccessStore, v VideoStore) *SessionHandler {
	return &SessionHandler{Sessions: s, Access: a, Videos: v}
}

type commandReq struct {
	Command    string `json:"command"`
	VideoLabel string `json:"video_label"`
	Seconds    int    `json:"seconds"`
}

type sessionResp struct {
	RoomID      string     `json:"room_id"`
	State       string     `json:"state"`
	PlaybackRef *string    `json:"playback_ref"`
	StartedAt   *time.Time `json:"started_at"`
	PausedAt    *time.Time `json:"paused_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toSessionResp(s model.RoomSession) sessionResp {
	return sessionResp{
		RoomID:      s.RoomID,
		State:       s.State,
		PlaybackRef: s.PlaybackRef,
		StartedAt:   s.StartedAt,
		PausedAt:    s.PausedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// GetState handles GET /v1/rooms/:room_id/session, the idempotent read
// the poll clients hit at ~1Hz. 404 only when the room has never been
// provisioned.
func (h *SessionHandler) GetState(c echo.Context) error {
	roomID := strings.TrimSpace(c.Param("room_id"))
	if roomID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.Get(ctx, roomID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toSessionResp(s))
}

// Command handles POST /v1/rooms/:room_id/session. Commands are
// idempotent whole-state writes, not deltas; two racing commands resolve
// last-write-wins, accepted at human command rates.
func (h *SessionHandler) Command(c echo.Context) error {
	roomID := strings.TrimSpace(c.Param("room_id"))
	if roomID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id required"})
	}
	var req commandReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch strings.ToLower(strings.TrimSpace(req.Command)) {
	case "play":
		return h.play(c, ctx, roomID, req.VideoLabel)
	case "pause":
		return h.pause(c, ctx, roomID)
	case "stop":
		return h.stop(c, ctx, roomID)
	case "seek_delta":
		return h.seekDelta(c, ctx, roomID, req.Seconds)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown command"})
	}
}

// play validates the label against the catalog and the calling
// licensee's allow-list before touching the session. A disallowed label
// is rejected outright and the stored state is left unchanged. ADMIN
// callers carry no licensee binding and skip the allow-list, but never
// the catalog check.
func (h *SessionHandler) play(c echo.Context, ctx context.Context, roomID, rawLabel string) error {
	label := repository.NormalizeLabel(rawLabel)
	if label == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "video_label required"})
	}
	video, err := h.Videos.GetActiveByLabel(ctx, label)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown or inactive video label"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if licenseeID, _ := c.Get("licensee_id").(uint64); licenseeID != 0 {
		ok, err := h.Access.IsAllowed(ctx, licenseeID, video.Label)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "video label not allowed for licensee"})
		}
	}

	s, err := h.Sessions.Get(ctx, roomID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	s.Play(video.Label, time.Now().UTC())
	if err := h.Sessions.Save(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	h.publish(roomID, "play", video.Label, 0, s.State)
	return c.JSON(http.StatusOK, toSessionResp(s))
}

// pause is permissive: from any state other than playing it is a no-op
// that still succeeds, keeping the command idempotent rather than
// strictly guarded.
func (h *SessionHandler) pause(c echo.Context, ctx context.Context, roomID string) error {
	s, err := h.Sessions.Get(ctx, roomID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if s.Pause(time.Now().UTC()) {
		if err := h.Sessions.Save(ctx, s); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
		}
	}
	h.publish(roomID, "pause", "", 0, s.State)
	return c.JSON(http.StatusOK, toSessionResp(s))
}

func (h *SessionHandler) stop(c echo.Context, ctx context.Context, roomID string) error {
	s, err := h.Sessions.Get(ctx, roomID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	s.Stop()
	if err := h.Sessions.Save(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	h.publish(roomID, "stop", "", 0, s.State)
	return c.JSON(http.StatusOK, toSessionResp(s))
}

// seekDelta is advisory and durably changes nothing: the signal exists
// only as an audit event and the 202 acknowledgement. A poller whose tick
// misses the window never sees it — fire-and-forget, not guaranteed
// delivered.
func (h *SessionHandler) seekDelta(c echo.Context, ctx context.Context, roomID string, seconds int) error {
	if seconds == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seconds required"})
	}
	s, err := h.Sessions.Get(ctx, roomID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.publish(roomID, "seek_delta", "", seconds, s.State)
	return c.JSON(http.StatusAccepted, echo.Map{"status": "accepted"})
}

func (h *SessionHandler) publish(roomID, command, label string, seconds int, state string) {
	go func() {
		_ = queue_publisher.PublishRoomEvent(context.Background(), queue.SessionCommandEvent{
			RoomID:     roomID,
			Command:    command,
			VideoLabel: label,
			Seconds:    seconds,
			State:      state,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()
}
