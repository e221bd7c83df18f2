package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/mkarlis/roomcast/internal/model"
	"github.com/mkarlis/roomcast/internal/utils"
)

// DeviceLookup authenticates a device bearer token hash against the
// registry. Every request re-authenticates against the store; there is no
// cached session.
type DeviceLookup interface {
	GetActiveByTokenHash(ctx context.Context, tokenHash string) (model.Device, error)
}

// SessionRead admits either a valid operator JWT or a device bearer token
// whose device is bound to the room in the path. A paired player polls
// its own room's state with the same token it heartbeats with; control
// surfaces poll with their operator JWT.
func SessionRead(secret string, devices DeviceLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err == nil && tok.Valid {
				if claims, ok := tok.Claims.(jwt.MapClaims); ok {
					c.Set("user_id", claims["sub"])
					c.Set("role", claims["role"])
				}
				return next(c)
			}

			// Not a JWT; try it as a device token scoped to this room.
			d, derr := devices.GetActiveByTokenHash(c.Request().Context(), utils.HashDeviceToken(raw))
			if derr != nil || d.RoomID != c.Param("room_id") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set("device", d)
			return next(c)
		}
	}
}

func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimPrefix(auth, "Bearer ")
	if raw == "" {
		return "", false
	}
	return raw, true
}
