package dto

// CreateAccountRequest entrada HTTP para crear una cuenta. ProfileImage llega en base64
// (se acepta también un data URI "data:image/png;base64,...").
type CreateAccountRequest struct {
	Name           string   `json:"name" validate:"required,max=120"`
	LastName       string   `json:"last_name" validate:"required,max=120"`
	DocumentType   string   `json:"document_type" validate:"required,max=20"`
	DocumentNumber string   `json:"document_number" validate:"required,max=30"`
	CellPhone      string   `json:"cell_phone" validate:"omitempty,max=20"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=6"`
	Roles          []string `json:"role" validate:"omitempty,dive,oneof=ADMIN USER"`
	ProfileImage   string   `json:"profile_image,omitempty"`
}

// UpdateAccountRequest entrada HTTP para actualizar el perfil.
// Email y Password se aceptan por compatibilidad con el cliente pero se ignoran.
type UpdateAccountRequest struct {
	Name           string   `json:"name"`
	LastName       string   `json:"last_name"`
	DocumentType   string   `json:"document_type"`
	DocumentNumber string   `json:"document_number"`
	CellPhone      string   `json:"cell_phone"`
	Roles          []string `json:"role"`
	ProfileImage   string   `json:"profile_image,omitempty"`
	Email          string   `json:"email,omitempty"`
	Password       string   `json:"password,omitempty"`
}

// AccountResponse proyección pública de una cuenta (sin hash de credencial).
type AccountResponse struct {
	ID              int64    `json:"id"`
	IdentityRef     string   `json:"identity_ref"`
	Name            string   `json:"name"`
	LastName        string   `json:"last_name"`
	DocumentType    string   `json:"document_type"`
	DocumentNumber  string   `json:"document_number"`
	CellPhone       string   `json:"cell_phone"`
	Email           string   `json:"email"`
	Roles           []string `json:"role"`
	ProfileImageRef *string  `json:"profile_image"`
}

// AccountListResponse listado de cuentas.
type AccountListResponse struct {
	Items []AccountResponse `json:"items"`
	Total int               `json:"total"`
}

// EmailExistsResponse respuesta de la verificación de email.
type EmailExistsResponse struct {
	Email  string `json:"email"`
	Exists bool   `json:"exists"`
}
