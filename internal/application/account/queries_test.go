package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/usuarios-api/internal/domain"
)

func TestQueries_GetGetByEmailYPerfil(t *testing.T) {
	h := newHarness()
	acc := seed(t, h, "a@x.com", nil)
	ctx := context.Background()

	byID, err := h.orch.Get(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc, byID)

	byEmail, err := h.orch.GetByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byEmail.ID)

	profile, err := h.orch.GetProfile(ctx, acc.IdentityRef)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, profile.ID)

	_, err = h.orch.GetProfile(ctx, "uid-desconocido")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.orch.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueries_ListYEmailExists(t *testing.T) {
	h := newHarness()
	seed(t, h, "a@x.com", nil)
	seed(t, h, "b@x.com", nil)
	ctx := context.Background()

	list, err := h.orch.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "a@x.com", list.Items[0].Email)

	exists, err := h.orch.EmailExists(ctx, "b@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = h.orch.EmailExists(ctx, "z@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
