package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/http/dto"
	"github.com/peermarket/backend/internal/middleware"
)

// respondError maps a service error to its HTTP status. Unclassified errors
// are treated as storage faults: logged in full, returned as a bare 500.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	code := apperr.CodeOf(err)

	status := fiber.StatusBadRequest
	switch code {
	case apperr.CodeNotFound:
		status = fiber.StatusNotFound
	case apperr.CodeUnauthorized:
		status = fiber.StatusForbidden
	case apperr.CodeNotAParty, apperr.CodeBlocked:
		status = fiber.StatusForbidden
	case apperr.CodeInvalidTransition:
		status = fiber.StatusConflict
	case apperr.CodeStorage:
		reqID, _ := c.Locals(middleware.CtxRequestID).(string)
		log.Error("request failed",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:     "internal error",
			RequestID: reqID,
		})
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error: apperr.MessageOf(err),
		Code:  code,
	})
}

func respondOK(c *fiber.Ctx, data any) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: data})
}

func respondCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: data})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: msg,
		Code:  apperr.CodeInvalidInput,
	})
}
