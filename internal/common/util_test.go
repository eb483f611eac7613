package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray_Length(t *testing.T) {
	a := GenerateRandByteArray(24)
	b := GenerateRandByteArray(24)
	require.Len(t, a, 24)
	require.Len(t, b, 24)
	assert.NotEqual(t, a, b)

	assert.Empty(t, GenerateRandByteArray(0))
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("secret")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 6), buf)

	WipeByteArray(nil)
}
