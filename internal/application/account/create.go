package account

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/usuarios-api/internal/application/dto"
	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/internal/domain/entity"
)

// CreateInput datos de alta. Image es el payload crudo (opcional).
type CreateInput struct {
	Name           string
	LastName       string
	DocumentType   string
	DocumentNumber string
	CellPhone      string
	Email          string
	Credential     string
	Roles          []string
	Image          []byte
}

// Create da de alta una cuenta:
//
//	¿email existe? → hash → identidad → claim de rol → imagen (opcional) → registro durable
//
// Si un paso falla se deshacen los anteriores en orden inverso y se devuelve el
// error del paso fallido. Un registro durable nunca existe sin su identidad.
func (o *Orchestrator) Create(ctx context.Context, in CreateInput) (*dto.AccountResponse, error) {
	ctx, w := o.begin(ctx, OpCreate)

	email := normalizeEmail(in.Email)
	if email == "" || in.Credential == "" {
		return nil, w.fail(ctx, "validate", fmt.Errorf("%w: email y password son requeridos", domain.ErrInvalidInput))
	}
	roles := normalizeRoles(in.Roles, o.cfg.DefaultRole)
	w.annotate("email", email)

	w.step("check-email")
	exists, err := o.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, w.fail(ctx, "check-email", persistenceErr(err, "verificar email"))
	}
	if exists {
		return nil, w.fail(ctx, "check-email", domain.ErrDuplicateEmail)
	}

	// Hash local antes de tocar sistemas externos: si falla no hay nada que deshacer.
	w.step("hash-credential")
	hash, err := o.hasher.Hash(in.Credential)
	if err != nil {
		return nil, w.fail(ctx, "hash-credential", fmt.Errorf("%w: credencial: %w", domain.ErrInvalidInput, err))
	}

	w.step("create-identity")
	identityRef, err := o.identity.CreateIdentity(ctx, email, in.Credential)
	if err != nil {
		return nil, w.fail(ctx, "create-identity", ensureKind(domain.ErrIdentityProvider, err, "crear identidad"))
	}
	w.annotate("identity_ref", identityRef)
	w.undo.push("delete-identity", func(ctx context.Context) error {
		return o.identity.DeleteIdentity(ctx, identityRef)
	})

	w.step("set-role-claim")
	if err := o.identity.SetRoleClaim(ctx, identityRef, roles[0]); err != nil {
		return nil, w.fail(ctx, "set-role-claim", ensureKind(domain.ErrClaimAssignment, err, "asignar rol"))
	}

	var imageRef *string
	if len(in.Image) > 0 {
		w.step("upload-image")
		url, err := o.images.UploadImage(ctx, o.cfg.ImageBucket, in.Image)
		if err != nil {
			return nil, w.fail(ctx, "upload-image", ensureKind(domain.ErrImageUpload, err, "subir imagen"))
		}
		imageRef = &url
		w.undo.push("delete-image", func(ctx context.Context) error {
			return o.images.DeleteImage(ctx, url)
		})
	}

	now := time.Now()
	account := &entity.Account{
		IdentityRef:     identityRef,
		Name:            in.Name,
		LastName:        in.LastName,
		DocumentType:    in.DocumentType,
		DocumentNumber:  in.DocumentNumber,
		CellPhone:       in.CellPhone,
		Email:           email,
		CredentialHash:  hash,
		Roles:           roles,
		ProfileImageRef: imageRef,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	w.step("save-record")
	if err := o.repo.Save(ctx, account); err != nil {
		return nil, w.fail(ctx, "save-record", persistenceErr(err, "guardar cuenta"))
	}

	w.log.Info().Int64("account_id", account.ID).Msg("cuenta creada")
	w.finish(nil)
	return ToResponse(account), nil
}
