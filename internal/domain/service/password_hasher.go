// Package service declares the ports the usecases depend on for hashing, tokens and mail.
package service

// PasswordHasher turns plaintext passwords into stored hashes and checks them.
// Implementations must never log either value.
type PasswordHasher interface {
	// Hash rejects passwords the algorithm would silently truncate.
	Hash(password string) (string, error)

	// Check reports a match in constant time; a malformed hash is simply a mismatch.
	Check(password, hash string) bool
}
