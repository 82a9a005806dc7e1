package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/http/dto"
	"github.com/peermarket/backend/internal/repositories"
)

type CategoryHandler struct {
	categories *repositories.CategoryRepo
	log        *zap.Logger
}

func NewCategoryHandler(categories *repositories.CategoryRepo, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, log: log}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.categories.List(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, cats)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "name is required")
	}
	parentID, err := parseOptionalUUID(req.ParentID, "parent_id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	cat, err := h.categories.Create(c.Context(), req.Name, parentID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondCreated(c, cat)
}
