package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dblook/internal/common"
	"github.com/dmitrijs2005/dblook/internal/cryptox"
)

// SaltKey is where Encrypted keeps its key-derivation salt in the inner storage.
const SaltKey = "storage-salt"

// Encrypted seals every value with AES-GCM before handing it to the inner
// storage. The salt is stored unencrypted under SaltKey.
type Encrypted struct {
	inner Storage
	key   []byte
}

// NewEncrypted derives the sealing key from passphrase and the salt found in
// inner, generating and storing a fresh salt on first use.
func NewEncrypted(ctx context.Context, inner Storage, passphrase []byte) (*Encrypted, error) {
	salt, err := inner.Get(ctx, SaltKey)
	if errors.Is(err, ErrNotFound) {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		if err := inner.Set(ctx, SaltKey, salt); err != nil {
			return nil, fmt.Errorf("store salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load salt: %w", err)
	}

	return &Encrypted{inner: inner, key: cryptox.DeriveKey(passphrase, salt)}, nil
}

func (e *Encrypted) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := e.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := cryptox.Open(blob, e.key)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w: %w", key, ErrCorrupt, err)
	}
	return plain, nil
}

func (e *Encrypted) Set(ctx context.Context, key string, value []byte) error {
	blob, err := cryptox.Seal(value, e.key)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", key, err)
	}
	return e.inner.Set(ctx, key, blob)
}

func (e *Encrypted) Remove(ctx context.Context, key string) error {
	return e.inner.Remove(ctx, key)
}
