package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// AccessHandler serves the per-licensee video allow-list (admin only).
type AccessHandler struct {
	Access AccessStore
}

func NewAccessHandler(a AccessStore) *AccessHandler { return &AccessHandler{Access: a} }

type replaceAllowedReq struct {
	VideoLabels []string `json:"video_labels"`
}
type addAllowedReq struct {
	VideoLabel string `json:"video_label"`
}

func licenseeParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// GetAllowed handles GET /v1/licensees/:id/videos.
func (h *AccessHandler) GetAllowed(c echo.Context) error {
	id, err := licenseeParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid licensee id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	labels, err := h.Access.Allowed(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"video_labels": labels})
}

// ReplaceAllowed handles PUT /v1/licensees/:id/videos. The whole list is
// swapped in one transaction; concurrent replaces race last-write-wins
// with no merge, which callers must expect.
func (h *AccessHandler) ReplaceAllowed(c echo.Context) error {
	id, err := licenseeParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid licensee id"})
	}
	var req replaceAllowedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Access.Replace(ctx, id, req.VideoLabels); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "replace failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// AddAllowed handles POST /v1/licensees/:id/videos.
func (h *AccessHandler) AddAllowed(c echo.Context) error {
	id, err := licenseeParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid licensee id"})
	}
	var req addAllowedReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.VideoLabel) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "video_label required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Access.Add(ctx, id, req.VideoLabel); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveAllowed handles DELETE /v1/licensees/:id/videos/:label.
func (h *AccessHandler) RemoveAllowed(c echo.Context) error {
	id, err := licenseeParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid licensee id"})
	}
	label := strings.TrimSpace(c.Param("label"))
	if label == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "label required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Access.Remove(ctx, id, label); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
