package entity

import "time"

// RoleUser rol por defecto cuando el alta no especifica ninguno.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Account representa la cuenta durable de un usuario (fila de la tabla users).
type Account struct {
	ID              int64  // asignado por el repositorio al crear; inmutable
	IdentityRef     string // UID en el proveedor de identidad; se fija una sola vez
	Name            string
	LastName        string
	DocumentType    string
	DocumentNumber  string
	CellPhone       string
	Email           string // único; inmutable después del alta
	CredentialHash  string // bcrypt; nunca en texto plano
	Roles           []string
	ProfileImageRef *string // URL devuelta por el almacén de imágenes, o nil
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PrimaryRole devuelve el primer rol, que es el que se publica como claim.
func (a *Account) PrimaryRole() string {
	if a == nil || len(a.Roles) == 0 {
		return ""
	}
	return a.Roles[0]
}

// ImageURL devuelve la URL de la imagen o "" si no tiene.
func (a *Account) ImageURL() string {
	if a == nil || a.ProfileImageRef == nil {
		return ""
	}
	return *a.ProfileImageRef
}
