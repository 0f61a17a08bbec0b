package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/w3art/marko/internal/service"
	"github.com/w3art/marko/internal/transfer"
)

type CampaignHandler struct {
	s service.CampaignService
}

func NewCampaignHandler(s service.CampaignService) *CampaignHandler {
	return &CampaignHandler{s: s}
}

func (h *CampaignHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.CampaignCreateRequest
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

	campaign, err := h.s.Create(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(campaign)
}

func (h *CampaignHandler) List(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var filter transfer.CampaignFilter
	if err := c.QueryParser(&filter); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}

	campaigns, err := h.s.List(c.Context(), userID, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(campaigns)
}

func (h *CampaignHandler) Get(c *fiber.Ctx) error {
	userID := GetUserID(c)
	campaignID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign ID",
		})
	}

	campaign, err := h.s.Get(c.Context(), int64(campaignID), userID)
	if err != nil {
		return campaignErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(campaign)
}

func (h *CampaignHandler) Update(c *fiber.Ctx) error {
	userID := GetUserID(c)
	campaignID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign ID",
		})
	}

	var req transfer.CampaignUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	campaign, err := h.s.Update(c.Context(), int64(campaignID), userID, &req)
	if err != nil {
		return campaignErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(campaign)
}

func (h *CampaignHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	campaignID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign ID",
		})
	}

	if err := h.s.Delete(c.Context(), int64(campaignID), userID); err != nil {
		return campaignErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "deleted",
	})
}

func (h *CampaignHandler) GenerateStrategy(c *fiber.Ctx) error {
	userID := GetUserID(c)
	campaignID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign ID",
		})
	}

	var req transfer.StrategyRequest
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

	strategy, err := h.s.GenerateStrategy(c.Context(), int64(campaignID), userID, &req)
	if err != nil {
		return campaignErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(strategy)
}

func (h *CampaignHandler) Content(c *fiber.Ctx) error {
	userID := GetUserID(c)
	campaignID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign ID",
		})
	}

	contents, err := h.s.Content(c.Context(), int64(campaignID), userID)
	if err != nil {
		return campaignErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(contents)
}

func campaignErrorResponse(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrCampaignNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
