package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/usuarios-api/internal/application/account"
	"github.com/jhoicas/usuarios-api/internal/domain/entity"
	"github.com/jhoicas/usuarios-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Accounts  *account.Orchestrator
	JWTSecret string
	JWTIssuer string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas de usuarios requieren Bearer Token
	users := api.Group("/users", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	h := NewAccountHandler(deps.Accounts, deps.Log)

	// /me antes de /:id para que no lo capture el parámetro
	users.Get("/me", RequireRole(entity.RoleAdmin, entity.RoleUser), h.Me)

	admin := RequireRole(entity.RoleAdmin)
	users.Post("/", admin, h.Create)
	users.Get("/", admin, h.List)
	users.Get("/email/:email/exists", admin, h.EmailExists)
	users.Get("/email/:email", admin, h.GetByEmail)
	users.Get("/:id", admin, h.GetByID)
	users.Put("/:id", admin, h.Update)
	users.Delete("/:id", admin, h.Delete)
}
