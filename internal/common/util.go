package common

import (
	"crypto/rand"
)

// GenerateRandByteArray returns size bytes from crypto/rand.
// It panics if the system randomness source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Use it for passwords and derived keys.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
