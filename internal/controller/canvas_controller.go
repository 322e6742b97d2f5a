package controller

import (
	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/pkg/serverutils"
	"ai-canvas-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICanvasController interface {
	RegisterRoutes(r fiber.Router)
	CreateThread(ctx *fiber.Ctx) error
	GetAllThreads(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	GetProgress(ctx *fiber.Ctx) error
	GetDeliverable(ctx *fiber.Ctx) error
	DeleteThread(ctx *fiber.Ctx) error
}

type canvasController struct {
	canvasService service.ICanvasService
}

func NewCanvasController(canvasService service.ICanvasService) ICanvasController {
	return &canvasController{
		canvasService: canvasService,
	}
}

func (c *canvasController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/canvas/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("thread", c.CreateThread)
	h.Get("threads", c.GetAllThreads)
	h.Post("chat", c.SendMessage)
	h.Get("thread/:id/history", c.GetChatHistory)
	h.Get("thread/:id/progress", c.GetProgress)
	h.Get("thread/:id/deliverable", c.GetDeliverable)
	h.Delete("thread/:id", c.DeleteThread)
}

func userIdFromLocals(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userId, nil
}

func threadIdFromParams(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid thread id")
	}
	return id, nil
}

func (c *canvasController) CreateThread(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	res, err := c.canvasService.CreateThread(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create thread", res))
}

func (c *canvasController) GetAllThreads(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	res, err := c.canvasService.GetAllThreads(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get threads", res))
}

func (c *canvasController) GetChatHistory(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	threadId, err := threadIdFromParams(ctx)
	if err != nil {
		return err
	}

	limit := ctx.QueryInt("limit", 0)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.canvasService.GetChatHistory(ctx.Context(), userId, threadId, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *canvasController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.canvasService.SendMessage(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *canvasController) GetProgress(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	threadId, err := threadIdFromParams(ctx)
	if err != nil {
		return err
	}

	res, err := c.canvasService.GetProgress(ctx.Context(), userId, threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get progress", res))
}

func (c *canvasController) GetDeliverable(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	threadId, err := threadIdFromParams(ctx)
	if err != nil {
		return err
	}

	res, err := c.canvasService.GetDeliverable(ctx.Context(), userId, threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get deliverable", res))
}

func (c *canvasController) DeleteThread(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	threadId, err := threadIdFromParams(ctx)
	if err != nil {
		return err
	}

	req := dto.DeleteThreadRequest{ThreadId: threadId}
	if err := c.canvasService.DeleteThread(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete thread", nil))
}
