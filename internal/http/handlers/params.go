package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/services"
)

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Newf(apperr.CodeInvalidInput, "invalid %s", name)
	}
	return id, nil
}

// parsePrice converts a request price string into an exact decimal. Floats
// never enter the money path.
func parsePrice(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, apperr.Newf(apperr.CodeInvalidInput, "%s is required", field)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Newf(apperr.CodeInvalidInput, "%s must be a decimal number", field)
	}
	return d, nil
}

func parseOptionalPrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.New(apperr.CodeInvalidInput, "min_offer_price must be a decimal number")
	}
	return d, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperr.Newf(apperr.CodeInvalidInput, "invalid %s", field)
	}
	return &id, nil
}

func queryPage(c *fiber.Ctx) (limit, offset int) {
	limit, offset = 20, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// requestMeta extracts the analytics attribution attached to every recorded
// event.
func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Referrer:  c.Get("Referer"),
	}
}
