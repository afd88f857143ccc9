// Package common contains small helpers shared across client components:
// random byte generation and secure wiping of sensitive buffers.
package common

import "crypto/rand"

// GenerateRandByteArray returns size cryptographically random bytes.
// Panics if the system RNG fails, which is not recoverable anyway.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites the slice with zeros. Useful for passwords and
// key material once they are no longer needed. Nil slices are ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
