package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/dto"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/pkg/serverutils"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/service"
)

type ICopilotController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
	ClearThread(ctx *fiber.Ctx) error
}

type copilotController struct {
	copilotService service.ICopilotService
}

func NewCopilotController(copilotService service.ICopilotService) ICopilotController {
	return &copilotController{
		copilotService: copilotService,
	}
}

func (c *copilotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/copilot/v1")
	h.Post("chat", c.Chat)
	h.Post("resolve", c.Resolve)
	h.Delete("threads/:id", c.ClearThread)
}

func (c *copilotController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.copilotService.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

func (c *copilotController) Resolve(ctx *fiber.Ctx) error {
	var req dto.ResolveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.copilotService.Resolve(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve", res))
}

func (c *copilotController) ClearThread(ctx *fiber.Ctx) error {
	threadId := ctx.Params("id")
	if threadId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "thread id is required")
	}

	if err := c.copilotService.ClearThread(ctx.Context(), threadId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear thread", nil))
}
