package ports

// PasswordHasher hashes credentials with a salted, deliberately slow algorithm.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches hash. Malformed hashes never match.
	Verify(plain, hash string) bool
}
