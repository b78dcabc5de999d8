// FILE: internal/controller/gmail_auth_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"ai-mailassist-be/internal/pkg/serverutils"
	"ai-mailassist-be/internal/service"
	"ai-mailassist-be/pkg/errs"
)

type IGmailAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type gmailAuthController struct {
	service   service.IGmailAuthService
	clientURL string
}

func NewGmailAuthController(service service.IGmailAuthService, clientURL string) IGmailAuthController {
	return &gmailAuthController{
		service:   service,
		clientURL: clientURL,
	}
}

func (c *gmailAuthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/gmail")
	h.Get("/login", c.Login)
	h.Get("/callback", c.Callback)
	h.Get("/status", c.Status)
	h.Post("/logout", c.Logout)
}

func (c *gmailAuthController) Login(ctx *fiber.Ctx) error {
	sessionId := ctx.Locals("session_id").(string)

	res, err := c.service.Login(ctx.Context(), sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Authorization started", res))
}

// Callback is hit by Google's redirect, so on success the browser is sent
// back to the client app rather than given JSON.
func (c *gmailAuthController) Callback(ctx *fiber.Ctx) error {
	sessionId := ctx.Locals("session_id").(string)

	// Google reports consent denial via error/error_description instead of a code
	if oauthErr := ctx.Query("error"); oauthErr != "" {
		desc := ctx.Query("error_description")
		if desc == "" {
			desc = oauthErr
		}
		return errs.New(errs.KindReauthRequired, "authorization was not granted: "+desc)
	}

	code := ctx.Query("code")
	state := ctx.Query("state")

	if err := c.service.Callback(ctx.Context(), sessionId, code, state); err != nil {
		return err
	}
	return ctx.Redirect(c.clientURL, fiber.StatusFound)
}

func (c *gmailAuthController) Status(ctx *fiber.Ctx) error {
	sessionId := ctx.Locals("session_id").(string)
	return ctx.JSON(serverutils.SuccessResponse("Gmail auth status", c.service.Status(ctx.Context(), sessionId)))
}

func (c *gmailAuthController) Logout(ctx *fiber.Ctx) error {
	sessionId := ctx.Locals("session_id").(string)
	c.service.Logout(ctx.Context(), sessionId)
	return ctx.JSON(serverutils.SuccessResponse[any]("Logged out", nil))
}
