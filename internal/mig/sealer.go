package mig

import "io"

// Sealer encrypts manifests at rest. Inventory and timestamp manifests
// enumerate every path on the file server, which is often more than an
// operator wants to leave next to the migrated data in plaintext.
// Sealing uses the public key only; opening requires a passphrase to
// unlock the private key, producing an OpenContext for the session.
type Sealer interface {
	// Setup performs one-time key generation: stores the public key in
	// plaintext and the private key encrypted with the passphrase.
	Setup(passphrase string) error

	// Seal encrypts data read from r and writes ciphertext to w.
	Seal(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key using the passphrase and returns
	// an OpenContext valid for the duration of the session.
	Unlock(passphrase string) (OpenContext, error)

	// IsConfigured reports whether both key files exist.
	IsConfigured() bool
}

// OpenContext holds an unlocked private key in memory. The unlocked key
// is never written to disk.
type OpenContext interface {
	// Open decrypts sealed data read from r and writes plaintext to w.
	Open(r io.Reader, w io.Writer) error
}
