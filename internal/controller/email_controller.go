// FILE: internal/controller/email_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"ai-mailassist-be/internal/pkg/serverutils"
	"ai-mailassist-be/internal/service"
	"ai-mailassist-be/pkg/gmail"
)

type IEmailController interface {
	RegisterRoutes(r fiber.Router)
	GetEmails(ctx *fiber.Ctx) error
}

type emailController struct {
	service service.IEmailService
}

func NewEmailController(service service.IEmailService) IEmailController {
	return &emailController{service: service}
}

func (c *emailController) RegisterRoutes(r fiber.Router) {
	r.Get("/emails", c.GetEmails)
}

func (c *emailController) GetEmails(ctx *fiber.Ctx) error {
	sessionId := ctx.Locals("session_id").(string)

	mode := ctx.Query("mode", gmail.ModeRecent)
	count := ctx.QueryInt("count", 10)
	if count < 1 || count > 100 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "count must be between 1 and 100"))
	}

	res, err := c.service.GetEmails(ctx.Context(), sessionId, mode, count)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Emails fetched", res))
}
