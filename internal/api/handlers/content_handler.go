package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/queue"
	"github.com/w3art/marko/internal/service"
	"github.com/w3art/marko/internal/transfer"
)

type ContentHandler struct {
	s           service.ContentService
	ai          service.AIService
	img         service.ImageService
	AsynqClient *asynq.Client
}

func NewContentHandler(
	s service.ContentService,
	ai service.AIService,
	img service.ImageService,
	asynqClient *asynq.Client) *ContentHandler {
	return &ContentHandler{
		s:           s,
		ai:          ai,
		img:         img,
		AsynqClient: asynqClient,
	}
}

func (h *ContentHandler) Generate(c *fiber.Ctx) error {
	var req transfer.ContentGenerateRequest
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

	result, err := h.ai.GenerateContent(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if result.Content != nil {
		return c.Status(fiber.StatusOK).JSON(result.Content)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"caption":           result.RawText,
		"hashtags":          []string{},
		"cta":               "",
		"visual_suggestion": "",
		"best_time":         "",
		"strategy_notes":    "",
	})
}

func (h *ContentHandler) GenerateImage(c *fiber.Ctx) error {
	var req transfer.ImageGenerateRequest
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

	imageURL, err := h.img.Generate(c.Context(), req.Prompt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"image_url": imageURL,
	})
}

func (h *ContentHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ContentCreateRequest
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

	content, err := h.s.Create(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if content.Status == models.ContentStatusScheduled && content.ScheduledFor != nil {
		delay := time.Until(*content.ScheduledFor)
		if delay < 0 {
			delay = 0
		}
		err = queue.EnqueuePublish(h.AsynqClient, queue.PublishContentPayload{
			ContentID: content.ID,
			UserID:    userID,
		}, delay)
		if err != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"error": "Error scheduling content",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(content)
}

func (h *ContentHandler) List(c *fiber.Ctx) error {
	userID := GetUserID(c)

	filter := transfer.ContentFilter{
		Status:      c.Query("status"),
		ContentType: c.Query("content_type"),
		Platform:    c.Query("platform"),
		Limit:       c.QueryInt("limit", 50),
	}

	contents, err := h.s.List(c.Context(), userID, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(contents)
}

func (h *ContentHandler) Get(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content ID",
		})
	}

	content, err := h.s.Get(c.Context(), int64(contentID), userID)
	if err != nil {
		return contentErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(content)
}

func (h *ContentHandler) Update(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content ID",
		})
	}

	var req transfer.ContentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	content, err := h.s.Update(c.Context(), int64(contentID), userID, &req)
	if err != nil {
		return contentErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(content)
}

func (h *ContentHandler) Publish(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content ID",
		})
	}

	result, err := h.s.Publish(c.Context(), int64(contentID), userID)
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, service.ErrAlreadyPublished) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return publishErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ContentHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content ID",
		})
	}

	if err := h.s.Delete(c.Context(), int64(contentID), userID); err != nil {
		return contentErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "deleted",
	})
}

func contentErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrContentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrContentPublished):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
