package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CatalogHandler exposes the read-only video catalog so control surfaces
// can list pickable labels. The catalog content itself is managed by an
// external service.
type CatalogHandler struct {
	Videos VideoStore
}

func NewCatalogHandler(v VideoStore) *CatalogHandler { return &CatalogHandler{Videos: v} }

type videoResp struct {
	Label       string `json:"label"`
	PlaybackRef string `json:"playback_ref"`
	SortOrder   int    `json:"sort_order"`
}

// ListVideos handles GET /v1/videos: active entries in display order.
func (h *CatalogHandler) ListVideos(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	videos, err := h.Videos.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]videoResp, 0, len(videos))
	for _, v := range videos {
		items = append(items, videoResp{Label: v.Label, PlaybackRef: v.PlaybackRef, SortOrder: v.SortOrder})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
