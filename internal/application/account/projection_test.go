package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/usuarios-api/internal/application/account"
	"github.com/jhoicas/usuarios-api/internal/domain/entity"
)

func TestToResponse_CopiaCamposPublicos(t *testing.T) {
	url := "https://img.test/b/1.jpg"
	a := &entity.Account{
		ID: 7, IdentityRef: "uid-7", Name: "Luis", LastName: "Rojas",
		DocumentType: "DNI", DocumentNumber: "1234", CellPhone: "999",
		Email: "l@x.com", CredentialHash: "hash", Roles: []string{"USER"},
		ProfileImageRef: &url,
	}
	out := account.ToResponse(a)
	require.NotNil(t, out)

	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "uid-7", out.IdentityRef)
	assert.Equal(t, "Rojas", out.LastName)
	assert.Equal(t, []string{"USER"}, out.Roles)
	assert.Equal(t, url, *out.ProfileImageRef)

	// La proyección no comparte memoria con la entidad.
	a.Roles[0] = "ADMIN"
	*a.ProfileImageRef = "otra"
	assert.Equal(t, []string{"USER"}, out.Roles)
	assert.Equal(t, url, *out.ProfileImageRef)
}

func TestToResponse_Nil(t *testing.T) {
	assert.Nil(t, account.ToResponse(nil))
}
