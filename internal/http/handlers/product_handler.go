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

type ProductHandler struct {
	productService *services.ProductService
	log            *zap.Logger
}

func NewProductHandler(productService *services.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, log: log}
}

func (h *ProductHandler) parseInput(req *dto.ProductRequest) (services.ProductInput, error) {
	price, err := parsePrice(req.Price, "price")
	if err != nil {
		return services.ProductInput{}, err
	}
	minOffer, err := parseOptionalPrice(req.MinOfferPrice)
	if err != nil {
		return services.ProductInput{}, err
	}
	categoryID, err := parseOptionalUUID(req.CategoryID, "category_id")
	if err != nil {
		return services.ProductInput{}, err
	}

	return services.ProductInput{
		Title:           req.Title,
		Description:     req.Description,
		Price:           price,
		Currency:        req.Currency,
		Condition:       req.Condition,
		IsActive:        req.IsActive,
		MinOfferPrice:   minOffer,
		LocationCity:    req.LocationCity,
		LocationState:   req.LocationState,
		LocationCountry: req.LocationCountry,
		CategoryID:      categoryID,
	}, nil
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	in, err := h.parseInput(&req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	p, err := h.productService.Create(c.Context(), middleware.GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondCreated(c, p)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit, offset := queryPage(c)
	filter := repositories.ProductFilter{Limit: limit, Offset: offset}

	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "invalid category_id")
		}
		filter.CategoryID = &id
	}
	if v := c.Query("condition"); v != "" {
		filter.Condition = &v
	}

	viewerID := middleware.GetUserID(c)
	res, err := h.productService.List(c.Context(), &viewerID, filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, res)
}

func (h *ProductHandler) Mine(c *fiber.Ctx) error {
	limit, offset := queryPage(c)
	res, err := h.productService.Mine(c.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, res)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	viewerID := middleware.GetUserID(c)
	p, err := h.productService.Get(c.Context(), id, &viewerID, requestMeta(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	in, err := h.parseInput(&req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	p, err := h.productService.Update(c.Context(), id, middleware.GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.productService.Delete(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, nil)
}

func (h *ProductHandler) Click(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.productService.Click(c.Context(), id, middleware.GetUserID(c), requestMeta(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, nil)
}

// --- Images ---

func (h *ProductHandler) ListImages(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	images, err := h.productService.ListImages(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, images)
}

func (h *ProductHandler) AddImage(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req dto.AddImageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	img, err := h.productService.AddImage(c.Context(), id, middleware.GetUserID(c), req.URL, req.AltText, req.SortOrder)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondCreated(c, img)
}

func (h *ProductHandler) DeleteImage(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.productService.DeleteImage(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, nil)
}
