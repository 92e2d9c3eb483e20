package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
)

// ApiError is the JSON error envelope used by every endpoint.
type ApiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ErrorResponse(code int, message string) fiber.Map {
	return fiber.Map{"error": ApiError{Code: code, Message: message}}
}

// StatusFor maps engine errors onto HTTP statuses. MissingQuery and
// UnknownCollection are caller errors; IndexUnavailable tells the caller to
// trigger a snapshot reload.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, matching.ErrMissingQuery):
		return fiber.StatusBadRequest
	case errors.Is(err, matching.ErrUnknownCollection):
		return fiber.StatusNotFound
	case errors.Is(err, matching.ErrIndexUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware converts panics and unhandled fiber errors into the
// standard envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}
		code := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
