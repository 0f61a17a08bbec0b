package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/w3art/marko/internal/service"
	"github.com/w3art/marko/internal/transfer"
)

type MetaHandler struct {
	s service.MetaService
}

func NewMetaHandler(s service.MetaService) *MetaHandler {
	return &MetaHandler{s: s}
}

func (h *MetaHandler) Status(c *fiber.Ctx) error {
	userID := GetUserID(c)

	status, err := h.s.Status(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *MetaHandler) Connect(c *fiber.Ctx) error {
	userID := GetUserID(c)

	url, err := h.s.ConnectURL(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"oauth_url": url,
	})
}

func (h *MetaHandler) Callback(c *fiber.Ctx) error {
	var req transfer.OAuthCallbackRequest
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

	result, err := h.s.Callback(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidState) || errors.Is(err, service.ErrExpiredState) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		var graphErr *service.GraphError
		if errors.As(err, &graphErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": graphErr.Message,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *MetaHandler) SelectPage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PageSelection
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

	if err := h.s.SelectPage(c.Context(), userID, &req); err != nil {
		if errors.Is(err, service.ErrNoAccount) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "page_selected",
	})
}

func (h *MetaHandler) Publish(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PublishRequest
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

	result, err := h.s.Publish(c.Context(), userID, &req)
	if err != nil {
		return publishErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *MetaHandler) Accounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.s.Accounts(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *MetaHandler) Disconnect(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.s.Disconnect(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "disconnected",
	})
}

// publishErrorResponse maps publish failures, including Graph API errors, to
// client responses. Graph messages are passed through verbatim.
func publishErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNoActiveAccount),
		errors.Is(err, service.ErrNoInstagramAccount),
		errors.Is(err, service.ErrNoFacebookPage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var graphErr *service.GraphError
	if errors.As(err, &graphErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": graphErr.Message,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
