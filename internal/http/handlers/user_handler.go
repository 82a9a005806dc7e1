package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/http/dto"
	"github.com/peermarket/backend/internal/middleware"
	"github.com/peermarket/backend/internal/services"
)

type UserHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewUserHandler(userService *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	u, err := h.userService.Get(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, u.Public())
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	p, err := h.userService.Profile(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, p)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	fields := map[string]*string{
		"full_name":     req.FullName,
		"phone":         req.Phone,
		"email":         req.Email,
		"address_line1": req.AddressLine1,
		"address_line2": req.AddressLine2,
		"city":          req.City,
		"state":         req.State,
		"country":       req.Country,
		"pin_code":      req.PinCode,
	}
	for k, v := range fields {
		if v == nil {
			delete(fields, k)
		}
	}

	p, err := h.userService.UpdateProfile(c.Context(), middleware.GetUserID(c), fields)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, p)
}
