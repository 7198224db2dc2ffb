package ports

// PasswordHasher deriva el hash que se persiste; la credencial plana nunca se guarda.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}
