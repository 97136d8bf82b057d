package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Patch-lnd/AttendanceSystem/internal/engine"
)

// statusFor maps an engine error kind to the HTTP status used in JSON replies.
func statusFor(kind engine.Kind) int {
	switch kind {
	case engine.KindValidation:
		return fiber.StatusBadRequest
	case engine.KindNotFound:
		return fiber.StatusNotFound
	case engine.KindAuth:
		return fiber.StatusUnauthorized
	case engine.KindInsufficientFunds:
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusInternalServerError
	}
}
