package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/usuarios-api/internal/domain"
)

func TestCode_MapeaCadaTipo(t *testing.T) {
	cause := errors.New("connection reset")
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"duplicado", domain.ErrDuplicateEmail, domain.CodeEmailExists},
		{"no encontrado", domain.ErrNotFound, domain.CodeNotFound},
		{"idp envuelto", fmt.Errorf("%w: crear identidad: %w", domain.ErrIdentityProvider, cause), domain.CodeIdentityProvider},
		{"claim", fmt.Errorf("%w: %w", domain.ErrClaimAssignment, cause), domain.CodeClaimAssignment},
		{"subida", fmt.Errorf("%w: %w", domain.ErrImageUpload, domain.ErrInvalidInput), domain.CodeImageUpload},
		{"borrado imagen", fmt.Errorf("%w: %w", domain.ErrImageDelete, cause), domain.CodeImageDelete},
		{"duplicado desde la DB", fmt.Errorf("%w: %w", domain.ErrPersistence, domain.ErrDuplicateEmail), domain.CodeEmailExists},
		{"persistencia", fmt.Errorf("%w: %w", domain.ErrPersistence, cause), domain.CodePersistence},
		{"desconocido", cause, domain.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.Code(tc.err))
		})
	}
}

func TestWrap_ConservaLaCausa(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("%w: subir: %w", domain.ErrImageUpload, cause)
	assert.ErrorIs(t, err, domain.ErrImageUpload)
	assert.ErrorIs(t, err, cause)
}

func TestMessage_SinCausasEnvueltas(t *testing.T) {
	cause := errors.New(`dial tcp 10.0.0.5:5432: connection refused`)

	assert.Equal(t, domain.ErrPersistence.Error(), domain.Message(fmt.Errorf("%w: insert user: %w", domain.ErrPersistence, cause)))
	assert.Equal(t, domain.ErrEmailAlreadyExists.Error(), domain.Message(fmt.Errorf("%w: %w", domain.ErrIdentityProvider, domain.ErrDuplicateEmail)))
	assert.Equal(t, "error interno", domain.Message(cause))
	assert.Empty(t, domain.Message(nil))
}
