package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/usuarios-api/internal/application/dto"
	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/pkg/logger"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"email duplicado", fmt.Errorf("%w: %w", domain.ErrPersistence, domain.ErrDuplicateEmail), fiber.StatusConflict},
		{"no encontrado", fmt.Errorf("%w: id 7", domain.ErrNotFound), fiber.StatusNotFound},
		{"validación", fmt.Errorf("%w: email vacío", domain.ErrInvalidInput), fiber.StatusBadRequest},
		{"imagen inválida", fmt.Errorf("%w: %w", domain.ErrImageUpload, domain.ErrInvalidInput), fiber.StatusUnprocessableEntity},
		{"almacén caído", fmt.Errorf("%w: HTTP 500", domain.ErrImageUpload), fiber.StatusBadGateway},
		{"proveedor", domain.ErrIdentityProvider, fiber.StatusBadGateway},
		{"claim", fmt.Errorf("%w: %w", domain.ErrClaimAssignment, domain.ErrIdentityProvider), fiber.StatusBadGateway},
		{"persistencia", domain.ErrPersistence, fiber.StatusServiceUnavailable},
		{"desconocido", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err, domain.Code(tt.err)))
		})
	}
}

func TestWriteError_NoExponeCausasInternas(t *testing.T) {
	var logs bytes.Buffer
	log := logger.FromZerolog(zerolog.New(&logs))
	cause := errors.New(`proveedor de identidad HTTP 500: {"internal":"stack"}`)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantLogged bool
	}{
		{
			name:       "5xx solo el mensaje de dominio",
			err:        fmt.Errorf("%w: crear identidad: %w", domain.ErrIdentityProvider, cause),
			wantStatus: fiber.StatusBadGateway,
			wantMsg:    domain.ErrIdentityProvider.Error(),
			wantLogged: true,
		},
		{
			name:       "4xx conserva el detalle",
			err:        fmt.Errorf("%w: email y password son requeridos", domain.ErrInvalidInput),
			wantStatus: fiber.StatusBadRequest,
			wantMsg:    "entrada inválida: email y password son requeridos",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, log, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.NotContains(t, body.Message, "stack")
			assert.Equal(t, tt.wantLogged, bytes.Contains(logs.Bytes(), []byte("stack")))
		})
	}
}
