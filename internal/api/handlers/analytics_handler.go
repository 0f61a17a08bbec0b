package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/w3art/marko/internal/service"
	"github.com/w3art/marko/internal/transfer"
)

type AnalyticsHandler struct {
	s service.AnalyticsService
}

func NewAnalyticsHandler(s service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{s: s}
}

func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	userID := GetUserID(c)

	query := transfer.OverviewQuery{Days: 30}
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}
	if query.Days <= 0 {
		query.Days = 30
	}

	overview, err := h.s.Overview(c.Context(), userID, query.Days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(overview)
}

func (h *AnalyticsHandler) ContentAnalytics(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content ID",
		})
	}

	content, analytics, err := h.s.ContentAnalytics(c.Context(), int64(contentID), userID)
	if err != nil {
		return analyticsErrorResponse(c, err)
	}

	if analytics == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"content_id": content.ID,
			"status":     content.Status,
			"message":    "No analytics available yet",
		})
	}

	response := fiber.Map{
		"content_id":   content.ID,
		"content_type": content.ContentType,
		"platform":     content.Platform,
		"published_at": content.PublishedAt,
		"metrics": fiber.Map{
			"impressions": analytics.Impressions,
			"reach":       analytics.Reach,
			"engagement":  analytics.Engagement,
			"likes":       analytics.Likes,
			"comments":    analytics.Comments,
			"shares":      analytics.Shares,
			"saves":       analytics.Saves,
			"clicks":      analytics.Clicks,
		},
	}

	// Ad spend metrics only make sense once money has been spent.
	if analytics.SpendCents > 0 {
		response["ad_metrics"] = fiber.Map{
			"spend_cents": analytics.SpendCents,
			"conversions": analytics.Conversions,
			"cpc_cents":   analytics.CPCCents,
			"cpm_cents":   analytics.CPMCents,
			"roas_x100":   analytics.ROASx100,
		}
	} else {
		response["ad_metrics"] = nil
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *AnalyticsHandler) Refresh(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content ID",
		})
	}

	if err := h.s.Refresh(c.Context(), int64(contentID), userID); err != nil {
		return analyticsErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":     "refreshed",
		"content_id": contentID,
	})
}

func (h *AnalyticsHandler) Analyze(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content ID",
		})
	}

	metrics, analysis, err := h.s.Analyze(c.Context(), int64(contentID), userID)
	if err != nil {
		return analyticsErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"content_id": contentID,
		"metrics":    metrics,
		"analysis":   analysis,
	})
}

func (h *AnalyticsHandler) Campaign(c *fiber.Ctx) error {
	userID := GetUserID(c)
	campaignID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign ID",
		})
	}

	analytics, err := h.s.Campaign(c.Context(), int64(campaignID), userID)
	if err != nil {
		return analyticsErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(analytics)
}

func (h *AnalyticsHandler) TopContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	query := transfer.TopContentQuery{
		Limit:  c.QueryInt("limit", 10),
		Metric: c.Query("metric", "engagement"),
	}
	if err := query.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	rows, err := h.s.TopContent(c.Context(), userID, query.Metric, query.Limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if rows == nil {
		rows = []transfer.TopContentRow{}
	}
	return c.Status(fiber.StatusOK).JSON(rows)
}

func analyticsErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, service.ErrCampaignNotFound),
		errors.Is(err, service.ErrNotPublished):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrNoAnalytics),
		errors.Is(err, service.ErrNoMetaPostID),
		errors.Is(err, service.ErrNoActiveAccount):
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
