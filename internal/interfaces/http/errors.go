package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/usuarios-api/internal/application/dto"
	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/pkg/logger"
)

// statusFor traduce el código de dominio al status HTTP.
func statusFor(err error, code string) int {
	switch code {
	case domain.CodeEmailExists:
		return fiber.StatusConflict
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeValidation:
		return fiber.StatusBadRequest
	case domain.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case domain.CodeForbidden:
		return fiber.StatusForbidden
	case domain.CodeImageUpload:
		if errors.Is(err, domain.ErrInvalidInput) {
			return fiber.StatusUnprocessableEntity
		}
		return fiber.StatusBadGateway
	case domain.CodeIdentityProvider, domain.CodeClaimAssignment, domain.CodeImageDelete:
		return fiber.StatusBadGateway
	case domain.CodePersistence:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError responde con el código estable del error. Los errores 4xx llevan el detalle;
// los 5xx solo el mensaje del error de dominio y la cadena completa va al log.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	code := domain.Code(err)
	return writeErrorCode(c, log, code, err)
}

// writeErrorCode igual que writeError pero con un código propio de la capa HTTP.
func writeErrorCode(c *fiber.Ctx, log *logger.Logger, code string, err error) error {
	status := statusFor(err, domain.Code(err))
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		msg = domain.Message(err)
		if log != nil {
			log.Error().Err(err).Str("code", code).Str("method", c.Method()).Str("path", c.Path()).Msg("petición fallida")
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
