package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/http/dto"
	"github.com/peermarket/backend/internal/middleware"
	"github.com/peermarket/backend/internal/services"
)

type WishlistHandler struct {
	wishlistService *services.WishlistService
	log             *zap.Logger
}

func NewWishlistHandler(wishlistService *services.WishlistService, log *zap.Logger) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService, log: log}
}

func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	var req dto.WishlistAddRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return badRequest(c, "invalid product_id")
	}

	item, err := h.wishlistService.Add(c.Context(), middleware.GetUserID(c), productID, requestMeta(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondCreated(c, item)
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	items, err := h.wishlistService.List(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, items)
}

func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "productId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.wishlistService.Remove(c.Context(), middleware.GetUserID(c), productID); err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, nil)
}
