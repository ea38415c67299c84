package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/YasiruRavidith/Chat-Room/internal/httpx"
	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
)

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || value == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(value), nil
}

func deliveryState(s string) models.DeliveryState {
	return models.DeliveryState(s)
}

// serviceError maps service sentinels onto HTTP responses; anything else
// is a 500 with the given code.
func serviceError(c *fiber.Ctx, err error, code string) error {
	switch {
	case errors.Is(err, service.ErrMalformed):
		return httpx.BadRequest(c, "malformed_input", "Malformed input")
	case errors.Is(err, service.ErrUnauthenticated):
		return httpx.Forbidden(c, "forbidden", "Not allowed")
	case errors.Is(err, service.ErrNotAMember):
		return httpx.Forbidden(c, "not_a_member", "Not a member of this group")
	case errors.Is(err, service.ErrNotFound):
		return httpx.NotFound(c, "not_found", "Not found")
	default:
		return httpx.Internal(c, code)
	}
}
