package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/internal/domain/entity"
	"github.com/jhoicas/usuarios-api/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

const accountColumns = `id, identity_ref, name, last_name, document_type, document_number, cell_phone,
		email, credential_hash, roles, profile_image_ref, created_at, updated_at`

// AccountRepo implementación del puerto AccountRepository sobre PostgreSQL (usable con pool o tx).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador de persistencia para cuentas. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// FindByID obtiene una cuenta por ID.
func (r *AccountRepo) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	return r.findOne(ctx, "id = $1", id)
}

// FindByEmail obtiene una cuenta por email.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(ctx, "email = $1", email)
}

// FindByIdentityRef obtiene la cuenta asociada a un UID del proveedor de identidad.
func (r *AccountRepo) FindByIdentityRef(ctx context.Context, identityRef string) (*entity.Account, error) {
	return r.findOne(ctx, "identity_ref = $1", identityRef)
}

// ExistsByEmail indica si ya hay una cuenta con ese email.
func (r *AccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: exists by email: %w", domain.ErrPersistence, err)
	}
	return exists, nil
}

// Save inserta (ID == 0) o actualiza los campos mutables de la cuenta.
func (r *AccountRepo) Save(ctx context.Context, a *entity.Account) error {
	now := time.Now().UTC()
	if a.ID == 0 {
		return r.insert(ctx, a, now)
	}
	return r.update(ctx, a, now)
}

func (r *AccountRepo) insert(ctx context.Context, a *entity.Account, now time.Time) error {
	query := `
		INSERT INTO users (identity_ref, name, last_name, document_type, document_number, cell_phone,
			email, credential_hash, roles, profile_image_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		a.IdentityRef, a.Name, a.LastName, a.DocumentType, a.DocumentNumber, a.CellPhone,
		a.Email, a.CredentialHash, rolesOrEmpty(a.Roles), a.ProfileImageRef, now,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) != "users_identity_ref_key" {
			return fmt.Errorf("%w: %w: %s", domain.ErrPersistence, domain.ErrDuplicateEmail, a.Email)
		}
		return fmt.Errorf("%w: insert user: %w", domain.ErrPersistence, err)
	}
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// update no toca email, identity_ref ni credential_hash.
func (r *AccountRepo) update(ctx context.Context, a *entity.Account, now time.Time) error {
	query := `
		UPDATE users SET name = $2, last_name = $3, document_type = $4, document_number = $5,
			cell_phone = $6, roles = $7, profile_image_ref = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		a.ID, a.Name, a.LastName, a.DocumentType, a.DocumentNumber,
		a.CellPhone, rolesOrEmpty(a.Roles), a.ProfileImageRef, now,
	)
	if err != nil {
		return fmt.Errorf("%w: update user: %w", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %w: user %d", domain.ErrPersistence, domain.ErrNotFound, a.ID)
	}
	a.UpdatedAt = now
	return nil
}

// DeleteByID elimina la cuenta; una fila inexistente no es error.
func (r *AccountRepo) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%w: delete user: %w", domain.ErrPersistence, err)
	}
	return nil
}

// FindAll lista todas las cuentas ordenadas por ID.
func (r *AccountRepo) FindAll(ctx context.Context) ([]*entity.Account, error) {
	rows, err := r.q.Query(ctx, `SELECT `+accountColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()
	var list []*entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan user: %w", domain.ErrPersistence, err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list users: %w", domain.ErrPersistence, err)
	}
	return list, nil
}

func (r *AccountRepo) findOne(ctx context.Context, where string, arg any) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get user by %s: %w", domain.ErrPersistence, where, err)
	}
	return a, nil
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var a entity.Account
	err := row.Scan(
		&a.ID, &a.IdentityRef, &a.Name, &a.LastName, &a.DocumentType, &a.DocumentNumber, &a.CellPhone,
		&a.Email, &a.CredentialHash, &a.Roles, &a.ProfileImageRef, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func rolesOrEmpty(roles []string) []string {
	if roles == nil {
		return []string{}
	}
	return roles
}
