package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/pkg/jwt"
)

// Locals keys para el UID del proveedor de identidad y el rol del token.
const (
	LocalIdentityRef = "identity_ref"
	LocalRole        = "role"
)

// AuthMiddleware valida el Bearer Token (ID token del proveedor) y extrae identityRef y rol a c.Locals.
func AuthMiddleware(jwtSecret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío")
		}
		identityRef, role, err := jwt.Parse(jwtSecret, issuer, tokenString)
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "token inválido o expirado")
		}
		c.Locals(LocalIdentityRef, identityRef)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// RequireRole permite el paso solo si el rol del token está entre allowed (sin distinguir mayúsculas).
// Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return unauthorized(c, "MISSING_ROLE", "el token no incluye el claim role")
		}
		for _, r := range allowed {
			if strings.EqualFold(r, role) {
				return c.Next()
			}
		}
		return writeError(c, nil, fmt.Errorf("%w: rol %s sin permiso para este recurso", domain.ErrForbidden, role))
	}
}

// unauthorized responde 401 con un código específico de autenticación.
func unauthorized(c *fiber.Ctx, code, detail string) error {
	return writeErrorCode(c, nil, code, fmt.Errorf("%w: %s", domain.ErrUnauthorized, detail))
}

// GetIdentityRef devuelve el UID del token (después del middleware de auth).
func GetIdentityRef(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalIdentityRef).(string)
	return s
}

// GetRole devuelve el rol del token (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
