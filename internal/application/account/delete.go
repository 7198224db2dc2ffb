package account

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jhoicas/usuarios-api/internal/domain"
)

// Delete elimina la cuenta id en orden inverso al alta:
//
//	buscar → imagen → identidad → registro durable
//
// Un fallo al borrar la imagen solo se registra (una imagen huérfana es preferible a
// bloquear la baja). Si falla el borrado de la identidad el registro queda intacto y
// la operación puede reintentarse. Un segundo Delete sobre el mismo id devuelve NotFound.
func (o *Orchestrator) Delete(ctx context.Context, id int64) error {
	ctx, w := o.begin(ctx, OpDelete)
	w.annotate("account_id", strconv.FormatInt(id, 10))

	w.step("find-record")
	existing, err := o.repo.FindByID(ctx, id)
	if err != nil {
		return w.fail(ctx, "find-record", persistenceErr(err, "buscar cuenta"))
	}
	if existing == nil {
		return w.fail(ctx, "find-record", fmt.Errorf("%w: cuenta %d", domain.ErrNotFound, id))
	}
	w.annotate("identity_ref", existing.IdentityRef)

	if url := existing.ImageURL(); url != "" {
		w.step("delete-image")
		if err := o.images.DeleteImage(ctx, url); err != nil {
			w.warn("delete-image", err)
		}
	}

	w.step("delete-identity")
	if err := o.identity.DeleteIdentity(ctx, existing.IdentityRef); err != nil {
		return w.fail(ctx, "delete-identity", ensureKind(domain.ErrIdentityProvider, err, "eliminar identidad"))
	}

	w.step("delete-record")
	if err := o.repo.DeleteByID(ctx, id); err != nil {
		return w.fail(ctx, "delete-record", persistenceErr(err, "eliminar cuenta"))
	}

	w.log.Info().Msg("cuenta eliminada")
	w.finish(nil)
	return nil
}
