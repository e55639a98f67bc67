// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a
// single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (argon2id), keeping the
// domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a stored hash. It never
	// panics or errors on a malformed hash; any internal failure is a
	// mismatch.
	Verify(password, hash string) bool

	// SimulateVerify performs a hash computation with no comparison. Invoked
	// when a looked-up account does not exist so that login latency is
	// statistically indistinguishable between "wrong password" and "no such
	// account".
	SimulateVerify()
}
