package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("master-secret")
	salt := []byte("0123456789abcdef")

	key1, usedSalt, err := DeriveKey(secret, salt)
	require.NoError(t, err)
	assert.Equal(t, salt, usedSalt)

	key2, _, err := DeriveKey(secret, salt)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	// ключ - валидный base64-url на 32 байта
	raw, err := base64.URLEncoding.DecodeString(string(key1))
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestDeriveKey_GeneratesSalt(t *testing.T) {
	secret := []byte("master-secret")

	key1, salt1, err := DeriveKey(secret, nil)
	require.NoError(t, err)
	require.Len(t, salt1, SaltLength)

	key2, salt2, err := DeriveKey(secret, nil)
	require.NoError(t, err)

	// каждая генерация дает новую соль и, соответственно, новый ключ
	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, key1, key2)
}

func TestDeriveKey_DifferentSecrets(t *testing.T) {
	salt := []byte("0123456789abcdef")

	key1, _, err := DeriveKey([]byte("secret-one"), salt)
	require.NoError(t, err)
	key2, _, err := DeriveKey([]byte("secret-two"), salt)
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2)
}

func TestDeriveKey_Errors(t *testing.T) {
	_, _, err := DeriveKey(nil, nil)
	assert.Error(t, err)

	_, _, err = DeriveKey([]byte("secret"), []byte("short"))
	assert.Error(t, err)
}
