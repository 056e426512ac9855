package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
)

// errorMapping status y código por error de dominio, en orden de prioridad.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidMoneyFormat, fiber.StatusBadRequest, "INVALID_MONEY_FORMAT"},
	{domain.ErrEmptyCart, fiber.StatusBadRequest, "EMPTY_CART"},
	{domain.ErrInvalidSeller, fiber.StatusBadRequest, "INVALID_SELLER"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicateCode, fiber.StatusConflict, "DUPLICATE_CODE"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrSaleCancelled, fiber.StatusConflict, "SALE_CANCELLED"},
	{domain.ErrSaleNotPersisted, fiber.StatusConflict, "SALE_NOT_PERSISTED"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError traduce errores de dominio a respuestas HTTP. Lo no reconocido es 500 y se registra.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		code := "INSUFFICIENT_STOCK"
		if errors.Is(err, domain.ErrProductUnavailable) {
			code = "PRODUCT_UNAVAILABLE"
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    code,
			Message: stockErr.Error(),
			Details: dto.StockErrorDetails{
				Code:      stockErr.Code,
				Name:      stockErr.ProductName,
				Available: stockErr.Available,
				Requested: stockErr.Requested,
			},
		})
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}

	code := "INTERNAL"
	if errors.Is(err, domain.ErrPersistenceFailure) {
		code = "PERSISTENCE_FAILURE"
	}
	log.Error().Err(err).Str("request_id", GetRequestID(c)).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: code, Message: "error interno, intente más tarde"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
