package ports

// PasswordHasher is the external one-way password primitive. Verify must
// swallow every internal failure and report it as a plain mismatch.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}
