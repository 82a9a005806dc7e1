package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/http/dto"
	"github.com/peermarket/backend/internal/services"
)

type AuthHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewAuthHandler(userService *services.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, log: log}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	res, err := h.userService.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondCreated(c, res)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	res, err := h.userService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		if apperr.Is(err, apperr.CodeUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: apperr.MessageOf(err),
				Code:  apperr.CodeUnauthorized,
			})
		}
		return respondError(c, h.log, err)
	}
	return respondOK(c, res)
}
