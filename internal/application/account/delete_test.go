package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/usuarios-api/internal/domain"
)

func TestDelete_EliminaImagenIdentidadYRegistro(t *testing.T) {
	h := newHarness()
	acc := seed(t, h, "a@x.com", []byte("img"))

	require.NoError(t, h.orch.Delete(context.Background(), acc.ID))

	assert.Equal(t, 0, h.images.count())
	assert.False(t, h.identity.exists(acc.IdentityRef))
	assert.Equal(t, 0, h.repo.count())
}

func TestDelete_FalloDeImagenSoloSeRegistra(t *testing.T) {
	h := newHarness()
	acc := seed(t, h, "a@x.com", []byte("img"))
	h.images.failOn["delete"] = errBoom

	err := h.orch.Delete(context.Background(), acc.ID)
	require.NoError(t, err, "una imagen huérfana no bloquea la baja")
	assert.False(t, h.identity.exists(acc.IdentityRef))
	assert.Equal(t, 0, h.repo.count())
}

func TestDelete_FalloDeIdentidadDejaElRegistroIntacto(t *testing.T) {
	h := newHarness()
	acc := seed(t, h, "a@x.com", nil)
	h.identity.failOn["delete"] = errBoom

	err := h.orch.Delete(context.Background(), acc.ID)
	assert.ErrorIs(t, err, domain.ErrIdentityProvider)
	assert.Equal(t, 1, h.repo.count(), "el registro queda para reintentar")

	delete(h.identity.failOn, "delete")
	require.NoError(t, h.orch.Delete(context.Background(), acc.ID), "el reintento completa la baja")
	assert.Equal(t, 0, h.repo.count())
}

func TestDelete_EsIdempotente(t *testing.T) {
	h := newHarness()
	acc := seed(t, h, "a@x.com", nil)

	require.NoError(t, h.orch.Delete(context.Background(), acc.ID))
	err := h.orch.Delete(context.Background(), acc.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrIdentityProvider)
	assert.Len(t, h.identity.callsWithPrefix("delete:"), 1, "el segundo intento no llega al proveedor")
}

func TestDelete_FalloDePersistenciaPermiteReintento(t *testing.T) {
	h := newHarness()
	acc := seed(t, h, "a@x.com", nil)
	h.repo.failDelete = errBoom

	err := h.orch.Delete(context.Background(), acc.ID)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.False(t, h.identity.exists(acc.IdentityRef))

	// Reintento: borrar una identidad ya inexistente es no-op.
	h.repo.failDelete = nil
	require.NoError(t, h.orch.Delete(context.Background(), acc.ID))
	assert.Equal(t, 0, h.repo.count())
}

func TestDelete_NoExiste(t *testing.T) {
	h := newHarness()
	err := h.orch.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"NOT_FOUND"}, h.metrics.outcomes["delete"])
}
