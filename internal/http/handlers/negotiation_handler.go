package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/http/dto"
	"github.com/peermarket/backend/internal/middleware"
	"github.com/peermarket/backend/internal/repositories"
	"github.com/peermarket/backend/internal/services"
)

type NegotiationHandler struct {
	negotiationService *services.NegotiationService
	log                *zap.Logger
}

func NewNegotiationHandler(negotiationService *services.NegotiationService, log *zap.Logger) *NegotiationHandler {
	return &NegotiationHandler{negotiationService: negotiationService, log: log}
}

func (h *NegotiationHandler) Start(c *fiber.Ctx) error {
	var req dto.StartNegotiationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return badRequest(c, "invalid product_id")
	}
	price, err := parsePrice(req.Price, "price")
	if err != nil {
		return respondError(c, h.log, err)
	}

	det, err := h.negotiationService.Start(c.Context(), middleware.GetUserID(c), productID, price, req.Message)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondCreated(c, det)
}

func (h *NegotiationHandler) Offer(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req dto.OfferRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	price, err := parsePrice(req.Price, "price")
	if err != nil {
		return respondError(c, h.log, err)
	}

	det, err := h.negotiationService.Offer(c.Context(), id, middleware.GetUserID(c), price, req.Message)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, det)
}

func (h *NegotiationHandler) Accept(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	res, err := h.negotiationService.Accept(c.Context(), id, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, res)
}

func (h *NegotiationHandler) Reject(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	det, err := h.negotiationService.Reject(c.Context(), id, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, det)
}

func (h *NegotiationHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	det, err := h.negotiationService.Cancel(c.Context(), id, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, det)
}

func (h *NegotiationHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	det, err := h.negotiationService.Get(c.Context(), id, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, det)
}

// List returns all negotiations the caller participates in, on either side.
func (h *NegotiationHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit, offset := queryPage(c)

	items, err := h.negotiationService.List(c.Context(), repositories.NegotiationFilter{
		PartyID: &userID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, items)
}

// Selling lists negotiations where the caller is the seller, with the
// mirror count of negotiations where they are the buyer.
func (h *NegotiationHandler) Selling(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit, offset := queryPage(c)

	items, err := h.negotiationService.List(c.Context(), repositories.NegotiationFilter{
		SellerID: &userID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	buying, err := h.negotiationService.CountAsBuyer(c.Context(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, dto.SellingResponse{Negotiations: items, BuyingCount: buying})
}

func (h *NegotiationHandler) Buying(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit, offset := queryPage(c)

	items, err := h.negotiationService.List(c.Context(), repositories.NegotiationFilter{
		BuyerID: &userID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	selling, err := h.negotiationService.CountAsSeller(c.Context(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, dto.BuyingResponse{Negotiations: items, SellingCount: selling})
}
