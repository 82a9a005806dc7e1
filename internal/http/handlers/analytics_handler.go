package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	log              *zap.Logger
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, log: log}
}

func eventTypeQuery(c *fiber.Ctx) (string, bool) {
	t := c.Query("type", models.EventProductView)
	switch t {
	case models.EventProductView, models.EventProductClick, models.EventOfferCreated,
		models.EventOfferAccepted, models.EventWishlistAdd:
		return t, true
	}
	return "", false
}

func (h *AnalyticsHandler) TopProducts(c *fiber.Ctx) error {
	eventType, ok := eventTypeQuery(c)
	if !ok {
		return badRequest(c, "unknown event type")
	}

	top, err := h.analyticsService.TopProducts(c.Context(), eventType, 20)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, top)
}

func (h *AnalyticsHandler) ByLocation(c *fiber.Ctx) error {
	eventType, ok := eventTypeQuery(c)
	if !ok {
		return badRequest(c, "unknown event type")
	}

	counts, err := h.analyticsService.ByLocation(c.Context(), eventType, 50)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, counts)
}
