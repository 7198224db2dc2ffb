package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3creto")
	require.NoError(t, err)
	assert.NotEqual(t, "s3creto", hash)
	assert.True(t, h.Verify(hash, "s3creto"))
	assert.False(t, h.Verify(hash, "otro"))

	_, err = h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	// bcrypt rechaza más de 72 bytes.
	_, err = h.Hash(strings.Repeat("x", 100))
	assert.Error(t, err)
}

func TestNewBcryptHasher_CostFueraDeRango(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
