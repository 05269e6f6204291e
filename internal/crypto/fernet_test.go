package crypto

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securecollab/internal/domain"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()

	key, _, err := DeriveKey([]byte("test-secret"), []byte("0123456789abcdef"))
	require.NoError(t, err)

	c, err := NewCipher(key)
	require.NoError(t, err)
	return c
}

func TestNewCipher_InvalidKey(t *testing.T) {
	_, err := NewCipher([]byte("not base64!!!"))
	assert.Error(t, err)

	// валидный base64, но не 32 байта
	short := base64.URLEncoding.EncodeToString([]byte("too short"))
	_, err = NewCipher([]byte(short))
	assert.Error(t, err)
}

func TestCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	// размеры вокруг границы блока AES
	for _, size := range []int{0, 1, 15, 16, 17, 1024} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			plaintext := bytes.Repeat([]byte{0xAB}, size)

			token, err := c.Encrypt(plaintext)
			require.NoError(t, err)

			got, err := c.Decrypt(token)
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)
		})
	}
}

func TestCipher_EncryptIsRandomized(t *testing.T) {
	c := newTestCipher(t)
	plaintext := []byte("same input")

	token1, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	token2, err := c.Encrypt(plaintext)
	require.NoError(t, err)

	// свежий IV на каждый вызов
	assert.NotEqual(t, token1, token2)
}

func TestCipher_TamperedToken(t *testing.T) {
	c := newTestCipher(t)

	token, err := c.Encrypt([]byte("payload under protection"))
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(string(token))
	require.NoError(t, err)

	// бит-флип в каждой позиции токена должен ломать подпись или формат
	for _, pos := range []int{0, 1, 9, headerLength, len(raw) - 1} {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[pos] ^= 0x01

		encoded := make([]byte, base64.URLEncoding.EncodedLen(len(tampered)))
		base64.URLEncoding.Encode(encoded, tampered)

		_, err := c.Decrypt(encoded)
		assert.ErrorIs(t, err, domain.ErrIntegrity, "flip at %d", pos)
	}
}

func TestCipher_MalformedTokens(t *testing.T) {
	c := newTestCipher(t)

	tests := []struct {
		name  string
		token []byte
	}{
		{"not base64", []byte("%%%not-a-token%%%")},
		{"empty", []byte{}},
		{"too short", []byte(base64.URLEncoding.EncodeToString([]byte("tiny")))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.token)
			assert.ErrorIs(t, err, domain.ErrIntegrity)
		})
	}
}

func TestCipher_WrongVersion(t *testing.T) {
	c := newTestCipher(t)

	token, err := c.Encrypt([]byte("data"))
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(string(token))
	require.NoError(t, err)
	raw[0] = 0x81

	encoded := make([]byte, base64.URLEncoding.EncodedLen(len(raw)))
	base64.URLEncoding.Encode(encoded, raw)

	_, err = c.Decrypt(encoded)
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestCipher_WrongKey(t *testing.T) {
	c := newTestCipher(t)

	token, err := c.Encrypt([]byte("for the right key only"))
	require.NoError(t, err)

	otherKey, _, err := DeriveKey([]byte("another-secret"), []byte("0123456789abcdef"))
	require.NoError(t, err)
	other, err := NewCipher(otherKey)
	require.NoError(t, err)

	_, err = other.Decrypt(token)
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}
