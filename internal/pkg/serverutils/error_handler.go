// FILE: internal/pkg/serverutils/error_handler.go
package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ai-mailassist-be/pkg/errs"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into JSON
// responses with a status derived from the error kind.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		code := StatusForError(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

// StatusForError maps the error taxonomy to HTTP statuses. Reauth failures
// are 401 so clients know to restart the consent flow; CSRF rejections are
// a client fault; upstream breakage is a bad gateway.
func StatusForError(err error) int {
	switch {
	case errs.IsKind(err, errs.KindReauthRequired):
		return fiber.StatusUnauthorized
	case errs.IsKind(err, errs.KindCSRF):
		return fiber.StatusBadRequest
	case errs.IsKind(err, errs.KindExternalService):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
