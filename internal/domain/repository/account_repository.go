package repository

import (
	"context"

	"github.com/jhoicas/usuarios-api/internal/domain/entity"
)

// AccountRepository define el puerto de persistencia para Account (DIP).
// Las búsquedas devuelven (nil, nil) cuando no existe la fila.
type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindByIdentityRef(ctx context.Context, identityRef string) (*entity.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserta si ID == 0 (asignando ID) o actualiza los campos mutables.
	// Email, identity_ref y credential_hash nunca se modifican en una actualización.
	Save(ctx context.Context, account *entity.Account) error
	DeleteByID(ctx context.Context, id int64) error
	FindAll(ctx context.Context) ([]*entity.Account, error)
}
