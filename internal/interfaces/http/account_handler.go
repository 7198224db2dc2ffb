package http

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/usuarios-api/internal/application/account"
	"github.com/jhoicas/usuarios-api/internal/application/dto"
	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/pkg/logger"
)

// AccountHandler maneja las peticiones HTTP de cuentas de usuario.
type AccountHandler struct {
	accounts *account.Orchestrator
	log      *logger.Logger
}

// NewAccountHandler construye el handler.
func NewAccountHandler(accounts *account.Orchestrator, log *logger.Logger) *AccountHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AccountHandler{accounts: accounts, log: log}
}

// Create godoc
// @Summary      Crear cuenta
// @Description  Crea la identidad, asigna el rol, sube la imagen (opcional) y guarda el registro.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAccountRequest  true  "Datos de la cuenta"
// @Success      201   {object}  dto.AccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAccountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}
	image, err := decodeImage(in.ProfileImage)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_IMAGE", Message: "profile_image debe ser base64"})
	}
	out, err := h.accounts.Create(c.UserContext(), account.CreateInput{
		Name:           in.Name,
		LastName:       in.LastName,
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		CellPhone:      in.CellPhone,
		Email:          in.Email,
		Credential:     in.Password,
		Roles:          in.Roles,
		Image:          image,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar cuentas
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AccountListResponse
// @Router       /api/users [get]
func (h *AccountHandler) List(c *fiber.Ctx) error {
	out, err := h.accounts.List(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener cuenta por ID
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la cuenta"
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *AccountHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser numérico"})
	}
	out, err := h.accounts.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByEmail godoc
// @Summary      Obtener cuenta por email
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        email  path  string  true  "Email"
// @Success      200    {object}  dto.AccountResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/users/email/{email} [get]
func (h *AccountHandler) GetByEmail(c *fiber.Ctx) error {
	out, err := h.accounts.GetByEmail(c.UserContext(), c.Params("email"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// EmailExists godoc
// @Summary      Verificar si un email ya está registrado
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        email  path  string  true  "Email"
// @Success      200    {object}  dto.EmailExistsResponse
// @Router       /api/users/email/{email}/exists [get]
func (h *AccountHandler) EmailExists(c *fiber.Ctx) error {
	email := c.Params("email")
	exists, err := h.accounts.EmailExists(c.UserContext(), email)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.EmailExistsResponse{Email: email, Exists: exists})
}

// Update godoc
// @Summary      Actualizar perfil de la cuenta
// @Description  Email y password no se modifican por esta vía.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la cuenta"
// @Param        body  body  dto.UpdateAccountRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.AccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *AccountHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser numérico"})
	}
	var in dto.UpdateAccountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	image, err := decodeImage(in.ProfileImage)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_IMAGE", Message: "profile_image debe ser base64"})
	}
	if in.Email != "" || in.Password != "" {
		h.log.Debug().Int64("id", id).Msg("email/password ignorados en actualización")
	}
	out, err := h.accounts.Update(c.UserContext(), id, account.UpdateInput{
		Name:           in.Name,
		LastName:       in.LastName,
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		CellPhone:      in.CellPhone,
		Roles:          in.Roles,
		Image:          image,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar cuenta
// @Tags         users
// @Security     Bearer
// @Param        id   path  int  true  "ID de la cuenta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser numérico"})
	}
	if err := h.accounts.Delete(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me godoc
// @Summary      Perfil del usuario autenticado
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AccountResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/me [get]
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	ref := GetIdentityRef(c)
	if ref == "" {
		return writeError(c, h.log, fmt.Errorf("%w: identidad no encontrada en el token", domain.ErrUnauthorized))
	}
	out, err := h.accounts.GetProfile(c.UserContext(), ref)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// decodeImage acepta base64 estándar o un data URI; cadena vacía = sin imagen.
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}
