package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/http/dto"
	"github.com/peermarket/backend/internal/middleware"
	"github.com/peermarket/backend/internal/repositories"
	"github.com/peermarket/backend/internal/services"
)

type DealHandler struct {
	dealService *services.DealService
	log         *zap.Logger
}

func NewDealHandler(dealService *services.DealService, log *zap.Logger) *DealHandler {
	return &DealHandler{dealService: dealService, log: log}
}

func (h *DealHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	deal, err := h.dealService.Get(c.Context(), id, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, deal)
}

func (h *DealHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req dto.UpdateDealStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	deal, err := h.dealService.AdvanceStatus(c.Context(), id, middleware.GetUserID(c), req.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, deal)
}

// List returns all deals the caller participates in, on either side.
func (h *DealHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit, offset := queryPage(c)

	deals, err := h.dealService.List(c.Context(), repositories.DealFilter{
		PartyID: &userID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, deals)
}

// Sales lists deals where the caller is the seller, with the mirror count
// of their purchases.
func (h *DealHandler) Sales(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit, offset := queryPage(c)

	deals, err := h.dealService.List(c.Context(), repositories.DealFilter{
		SellerID: &userID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	purchases, err := h.dealService.CountAsBuyer(c.Context(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, dto.SalesResponse{Deals: deals, PurchasesCount: purchases})
}

func (h *DealHandler) Purchases(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit, offset := queryPage(c)

	deals, err := h.dealService.List(c.Context(), repositories.DealFilter{
		BuyerID: &userID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	sales, err := h.dealService.CountAsSeller(c.Context(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, dto.PurchasesResponse{Deals: deals, SalesCount: sales})
}
