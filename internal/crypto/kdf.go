package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Параметры PBKDF2: те же, что использовались при шифровании уже
	// сохраненных блобов. Менять без миграции нельзя.
	kdfIterations = 100000
	keyLength     = 32

	// SaltLength - длина соли, которой префиксуется каждый зашифрованный блоб
	SaltLength = 16
)

// DeriveKey выводит ключ шифрования из мастер-секрета и соли по
// PBKDF2-HMAC-SHA256. Если соль не передана, генерируется новая случайная.
// Результат кодируется в base64-url - в таком виде его принимает Cipher.
// Для одинаковой пары (secret, salt) результат детерминирован, поэтому
// блоб с префиксом-солью расшифровывается без отдельного хранилища ключей.
func DeriveKey(secret []byte, salt []byte) (key []byte, usedSalt []byte, err error) {
	if len(secret) == 0 {
		return nil, nil, fmt.Errorf("secret is required")
	}

	if salt == nil {
		salt = make([]byte, SaltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	} else if len(salt) != SaltLength {
		return nil, nil, fmt.Errorf("salt must be %d bytes, got %d", SaltLength, len(salt))
	}

	raw := pbkdf2.Key(secret, salt, kdfIterations, keyLength, sha256.New)

	encoded := make([]byte, base64.URLEncoding.EncodedLen(len(raw)))
	base64.URLEncoding.Encode(encoded, raw)

	return encoded, salt, nil
}
