// Package cryptox holds the symmetric primitives used to protect persisted
// client state at rest: an argon2id key derivation and AES-GCM sealing.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/dblook/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the length of derived keys (AES-256).
const KeySize = 32

// SaltSize is the recommended salt length for DeriveKey.
const SaltSize = 16

// ErrCiphertextTooShort is returned by Open when the blob cannot even hold a nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey stretches a passphrase into a KeySize-byte key with argon2id.
// The same (passphrase, salt) pair always yields the same key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under key and returns nonce||ciphertext.
// A fresh random nonce is used for every call.
func Seal(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. Authentication failures (wrong key, tampered data)
// are returned as errors from the AEAD.
func Open(blob, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(blob) < aead.NonceSize() {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}
