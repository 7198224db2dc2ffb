package account

import (
	"slices"

	"github.com/jhoicas/usuarios-api/internal/application/dto"
	"github.com/jhoicas/usuarios-api/internal/domain/entity"
)

// ToResponse proyecta la cuenta durable a la forma pública. nil devuelve nil;
// el llamador lo traduce a domain.ErrNotFound.
func ToResponse(a *entity.Account) *dto.AccountResponse {
	if a == nil {
		return nil
	}
	var image *string
	if a.ProfileImageRef != nil {
		url := *a.ProfileImageRef
		image = &url
	}
	return &dto.AccountResponse{
		ID:              a.ID,
		IdentityRef:     a.IdentityRef,
		Name:            a.Name,
		LastName:        a.LastName,
		DocumentType:    a.DocumentType,
		DocumentNumber:  a.DocumentNumber,
		CellPhone:       a.CellPhone,
		Email:           a.Email,
		Roles:           slices.Clone(a.Roles),
		ProfileImageRef: image,
	}
}
