package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/http/dto"
	"github.com/peermarket/backend/internal/middleware"
	"github.com/peermarket/backend/internal/services"
)

type BlockHandler struct {
	blockService *services.BlockService
	log          *zap.Logger
}

func NewBlockHandler(blockService *services.BlockService, log *zap.Logger) *BlockHandler {
	return &BlockHandler{blockService: blockService, log: log}
}

func (h *BlockHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	blockedID, err := uuid.Parse(req.BlockedUserID)
	if err != nil {
		return badRequest(c, "invalid blocked_user_id")
	}

	b, err := h.blockService.Block(c.Context(), middleware.GetUserID(c), blockedID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondCreated(c, b)
}

func (h *BlockHandler) List(c *fiber.Ctx) error {
	blocks, err := h.blockService.List(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, blocks)
}

func (h *BlockHandler) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.blockService.Unblock(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, nil)
}
