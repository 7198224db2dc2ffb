package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// Errores de los sistemas externos que participan en el ciclo de vida de una cuenta.
// Los adaptadores los envuelven con fmt.Errorf("%w: ...: %w", kind, causa) para que
// errors.Is encuentre tanto el tipo como la causa original.
var (
	ErrIdentityProvider = errors.New("error del proveedor de identidad")
	ErrClaimAssignment  = errors.New("no se pudo asignar el rol en el proveedor de identidad")
	ErrImageUpload      = errors.New("no se pudo subir la imagen de perfil")
	ErrImageDelete      = errors.New("no se pudo eliminar la imagen de perfil")
	ErrPersistence      = errors.New("error de persistencia")
)

// ErrDuplicateEmail alias semántico usado por el orquestador.
var ErrDuplicateEmail = ErrEmailAlreadyExists

// Códigos estables expuestos a los clientes junto al mensaje.
const (
	CodeEmailExists      = "EMAIL_EXISTS"
	CodeNotFound         = "NOT_FOUND"
	CodeIdentityProvider = "IDENTITY_PROVIDER"
	CodeClaimAssignment  = "CLAIM_ASSIGNMENT"
	CodeImageUpload      = "IMAGE_UPLOAD"
	CodeImageDelete      = "IMAGE_DELETE"
	CodePersistence      = "PERSISTENCE"
	CodeValidation       = "VALIDATION"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL"
)

// El orden importa: un error de subida causado por entrada inválida debe reportarse
// como IMAGE_UPLOAD, y un duplicado detectado por la DB como EMAIL_EXISTS aunque
// también envuelva ErrPersistence.
var codes = []struct {
	err  error
	code string
}{
	{ErrEmailAlreadyExists, CodeEmailExists},
	{ErrNotFound, CodeNotFound},
	{ErrClaimAssignment, CodeClaimAssignment},
	{ErrIdentityProvider, CodeIdentityProvider},
	{ErrImageUpload, CodeImageUpload},
	{ErrImageDelete, CodeImageDelete},
	{ErrPersistence, CodePersistence},
	{ErrInvalidInput, CodeValidation},
	{ErrUnauthorized, CodeUnauthorized},
	{ErrForbidden, CodeForbidden},
}

// Code devuelve el código estable asociado a err, o CodeInternal si no es un error de dominio.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// Message devuelve el mensaje del error de dominio que determina el código de err,
// sin las causas envueltas. Para errores ajenos al dominio devuelve "error interno".
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.err.Error()
		}
	}
	return "error interno"
}
