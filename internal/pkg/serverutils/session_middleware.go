// FILE: internal/pkg/serverutils/session_middleware.go
package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const SessionCookieName = "sid"

// SessionMiddleware guarantees every request carries a session id. New
// visitors get a random id in an HttpOnly cookie; the id lands in
// Locals("session_id") either way.
func SessionMiddleware(ctx *fiber.Ctx) error {
	sid := ctx.Cookies(SessionCookieName)
	if sid == "" {
		sid = uuid.NewString()
		ctx.Cookie(&fiber.Cookie{
			Name:     SessionCookieName,
			Value:    sid,
			HTTPOnly: true,
			SameSite: "Lax",
			Expires:  time.Now().Add(24 * time.Hour),
		})
	}
	ctx.Locals("session_id", sid)
	return ctx.Next()
}
