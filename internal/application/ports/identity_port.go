package ports

import "context"

// IdentityProvider puerto de salida hacia el proveedor de identidad externo
// (credenciales y claims de rol). Los timeouts son responsabilidad del adaptador.
type IdentityProvider interface {
	// CreateIdentity registra email/credencial y devuelve el identityRef (UID).
	// Errores envuelven domain.ErrIdentityProvider.
	CreateIdentity(ctx context.Context, email, credential string) (string, error)
	// SetRoleClaim publica el rol primario como claim "role".
	// Errores envuelven domain.ErrClaimAssignment.
	SetRoleClaim(ctx context.Context, identityRef, role string) error
	// DeleteIdentity es idempotente: borrar un identityRef inexistente no es error.
	DeleteIdentity(ctx context.Context, identityRef string) error
}
