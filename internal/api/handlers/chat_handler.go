package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/w3art/marko/internal/service"
	"github.com/w3art/marko/internal/transfer"
)

type ChatHandler struct {
	s service.ChatService
}

func NewChatHandler(s service.ChatService) *ChatHandler {
	return &ChatHandler{s: s}
}

func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	userID := GetUserID(c)

	conversations, err := h.s.ListConversations(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(conversations)
}

func (h *ChatHandler) GetConversation(c *fiber.Ctx) error {
	userID := GetUserID(c)
	conversationID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	conversation, err := h.s.GetConversation(c.Context(), int64(conversationID), userID)
	if err != nil {
		return chatErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(conversation)
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	response, err := h.s.Send(c.Context(), userID, &req)
	if err != nil {
		return chatErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *ChatHandler) DeleteConversation(c *fiber.Ctx) error {
	userID := GetUserID(c)
	conversationID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	if err := h.s.DeleteConversation(c.Context(), int64(conversationID), userID); err != nil {
		return chatErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "deleted",
	})
}

func chatErrorResponse(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrConversationNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
