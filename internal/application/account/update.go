package account

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/jhoicas/usuarios-api/internal/application/dto"
	"github.com/jhoicas/usuarios-api/internal/domain"
)

// UpdateInput campos mutables del perfil. Email y credencial no forman parte de
// esta ruta. Roles vacío conserva los roles actuales; Image vacío conserva la imagen.
type UpdateInput struct {
	Name           string
	LastName       string
	DocumentType   string
	DocumentNumber string
	CellPhone      string
	Roles          []string
	Image          []byte
}

// Update actualiza el perfil de la cuenta id:
//
//	buscar → claim de rol (si cambiaron los roles) → subir imagen nueva → guardar → borrar imagen anterior
//
// El registro durable solo se escribe después de que todas las llamadas externas
// tuvieron éxito. La imagen anterior se borra únicamente cuando la nueva ya está
// subida y referenciada por el registro; si ese borrado falla solo se registra.
func (o *Orchestrator) Update(ctx context.Context, id int64, in UpdateInput) (*dto.AccountResponse, error) {
	ctx, w := o.begin(ctx, OpUpdate)
	w.annotate("account_id", strconv.FormatInt(id, 10))

	w.step("find-record")
	existing, err := o.repo.FindByID(ctx, id)
	if err != nil {
		return nil, w.fail(ctx, "find-record", persistenceErr(err, "buscar cuenta"))
	}
	if existing == nil {
		return nil, w.fail(ctx, "find-record", fmt.Errorf("%w: cuenta %d", domain.ErrNotFound, id))
	}
	w.annotate("identity_ref", existing.IdentityRef)

	// Sin roles en la petición se conservan los actuales; una fila sin roles recibe el rol por defecto.
	roles := normalizeRoles(existing.Roles, o.cfg.DefaultRole)
	if len(in.Roles) > 0 {
		roles = normalizeRoles(in.Roles, o.cfg.DefaultRole)
	}
	if !slices.Equal(roles, existing.Roles) {
		w.step("set-role-claim")
		if err := o.identity.SetRoleClaim(ctx, existing.IdentityRef, roles[0]); err != nil {
			return nil, w.fail(ctx, "set-role-claim", ensureKind(domain.ErrClaimAssignment, err, "actualizar rol"))
		}
		if previous := existing.PrimaryRole(); previous != "" && previous != roles[0] {
			w.undo.push("restore-role-claim", func(ctx context.Context) error {
				return o.identity.SetRoleClaim(ctx, existing.IdentityRef, previous)
			})
		}
	}

	imageRef := existing.ProfileImageRef
	replacedImage := ""
	if len(in.Image) > 0 {
		w.step("upload-image")
		url, err := o.images.UploadImage(ctx, o.cfg.ImageBucket, in.Image)
		if err != nil {
			return nil, w.fail(ctx, "upload-image", ensureKind(domain.ErrImageUpload, err, "subir imagen"))
		}
		w.undo.push("delete-new-image", func(ctx context.Context) error {
			return o.images.DeleteImage(ctx, url)
		})
		replacedImage = existing.ImageURL()
		imageRef = &url
	}

	updated := *existing
	updated.Name = in.Name
	updated.LastName = in.LastName
	updated.DocumentType = in.DocumentType
	updated.DocumentNumber = in.DocumentNumber
	updated.CellPhone = in.CellPhone
	updated.Roles = roles
	updated.ProfileImageRef = imageRef
	updated.UpdatedAt = time.Now()

	w.step("save-record")
	if err := o.repo.Save(ctx, &updated); err != nil {
		return nil, w.fail(ctx, "save-record", persistenceErr(err, "guardar cuenta"))
	}

	if replacedImage != "" {
		w.step("delete-previous-image")
		if err := o.images.DeleteImage(ctx, replacedImage); err != nil {
			w.warn("delete-previous-image", err)
		}
	}

	w.log.Info().Msg("cuenta actualizada")
	w.finish(nil)
	return ToResponse(&updated), nil
}
