package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "9290403300158e19f27e48e7087f7383b03065bf5b25ef23ebc40229616cd8b3"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))
	plain := []byte(`{"state":{"token":"abc"}}`)

	blob, err := Seal(plain, key)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "abc")

	got, err := Open(blob, key)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestSeal_FreshNonceEachCall(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))
	a, err := Seal([]byte("same"), key)
	require.NoError(t, err)
	b, err := Seal([]byte("same"), key)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpen_WrongKeyFails(t *testing.T) {
	blob, err := Seal([]byte("data"), DeriveKey([]byte("pw"), []byte("salt")))
	require.NoError(t, err)

	_, err = Open(blob, DeriveKey([]byte("other"), []byte("salt")))
	require.Error(t, err)
}

func TestOpen_TooShort(t *testing.T) {
	_, err := Open([]byte{1, 2, 3}, make([]byte, KeySize))
	require.ErrorIs(t, err, ErrCiphertextTooShort)
}
