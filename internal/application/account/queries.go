package account

import (
	"context"
	"fmt"

	"github.com/jhoicas/usuarios-api/internal/application/dto"
	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/internal/domain/entity"
)

// Get obtiene una cuenta por ID.
func (o *Orchestrator) Get(ctx context.Context, id int64) (*dto.AccountResponse, error) {
	a, err := o.reads.FindByID(ctx, id)
	return found(a, err, fmt.Sprintf("cuenta %d", id))
}

// GetByEmail obtiene una cuenta por email.
func (o *Orchestrator) GetByEmail(ctx context.Context, email string) (*dto.AccountResponse, error) {
	a, err := o.reads.FindByEmail(ctx, normalizeEmail(email))
	return found(a, err, "email "+email)
}

// GetProfile devuelve la cuenta asociada al UID del proveedor de identidad (endpoint /me).
func (o *Orchestrator) GetProfile(ctx context.Context, identityRef string) (*dto.AccountResponse, error) {
	a, err := o.reads.FindByIdentityRef(ctx, identityRef)
	return found(a, err, "identidad "+identityRef)
}

// EmailExists indica si ya hay una cuenta con ese email.
func (o *Orchestrator) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := o.reads.ExistsByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, persistenceErr(err, "verificar email")
	}
	return exists, nil
}

// List devuelve todas las cuentas registradas.
func (o *Orchestrator) List(ctx context.Context) (*dto.AccountListResponse, error) {
	list, err := o.reads.FindAll(ctx)
	if err != nil {
		return nil, persistenceErr(err, "listar cuentas")
	}
	items := make([]dto.AccountResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *ToResponse(a))
	}
	return &dto.AccountListResponse{Items: items, Total: len(items)}, nil
}

func found(a *entity.Account, err error, what string) (*dto.AccountResponse, error) {
	if err != nil {
		return nil, persistenceErr(err, "buscar "+what)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return ToResponse(a), nil
}
