package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	"securecollab/internal/domain"
)

// Формат токена Fernet:
//
//	версия (0x80) | timestamp (8 байт BE) | IV (16 байт) | AES-128-CBC шифртекст | HMAC-SHA256 (32 байта)
//
// целиком закодировано в base64-url. Любое нарушение формата или подписи
// возвращается как domain.ErrIntegrity, чтобы вызывающий код мог отличить
// подделанные данные от недоступного хранилища.
const (
	fernetVersion = 0x80

	headerLength = 1 + 8 + aes.BlockSize
	hmacLength   = sha256.Size
	minTokenLen  = headerLength + hmacLength
)

// Cipher реализует аутентифицированное шифрование в формате Fernet.
// Ключ принимается в base64-url (44 символа на 32 байта): первая половина
// сырого ключа - ключ подписи, вторая - ключ шифрования.
type Cipher struct {
	signKey []byte
	encKey  []byte
}

// NewCipher создает Cipher из base64-url-кодированного 32-байтового ключа
func NewCipher(encodedKey []byte) (*Cipher, error) {
	raw := make([]byte, base64.URLEncoding.DecodedLen(len(encodedKey)))
	n, err := base64.URLEncoding.Decode(raw, encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	if n != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", n)
	}

	return &Cipher{
		signKey: raw[:16],
		encKey:  raw[16:32],
	}, nil
}

// Encrypt шифрует данные и возвращает base64-url-кодированный токен.
// IV генерируется заново для каждого вызова.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	block, err := aes.NewCipher(c.encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to init aes: %w", err)
	}

	padded := padPKCS7(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	token := make([]byte, 0, headerLength+len(ciphertext)+hmacLength)
	token = append(token, fernetVersion)
	token = binary.BigEndian.AppendUint64(token, uint64(time.Now().Unix()))
	token = append(token, iv...)
	token = append(token, ciphertext...)

	mac := hmac.New(sha256.New, c.signKey)
	mac.Write(token)
	token = mac.Sum(token)

	encoded := make([]byte, base64.URLEncoding.EncodedLen(len(token)))
	base64.URLEncoding.Encode(encoded, token)

	return encoded, nil
}

// Decrypt проверяет подпись токена и возвращает исходные данные.
// Все ошибки формата и подписи сводятся к domain.ErrIntegrity: детали
// не должны помогать атакующему различать причины отказа.
func (c *Cipher) Decrypt(encoded []byte) ([]byte, error) {
	raw := make([]byte, base64.URLEncoding.DecodedLen(len(encoded)))
	n, err := base64.URLEncoding.Decode(raw, encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed token encoding", domain.ErrIntegrity)
	}
	raw = raw[:n]

	if len(raw) < minTokenLen {
		return nil, fmt.Errorf("%w: token too short", domain.ErrIntegrity)
	}
	if raw[0] != fernetVersion {
		return nil, fmt.Errorf("%w: unknown token version", domain.ErrIntegrity)
	}

	body, tag := raw[:len(raw)-hmacLength], raw[len(raw)-hmacLength:]

	mac := hmac.New(sha256.New, c.signKey)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, fmt.Errorf("%w: signature mismatch", domain.ErrIntegrity)
	}

	ciphertext := body[headerLength:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: invalid ciphertext length", domain.ErrIntegrity)
	}

	block, err := aes.NewCipher(c.encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to init aes: %w", err)
	}

	iv := body[9:headerLength]
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpadPKCS7(plaintext)
	if err != nil {
		return nil, err
	}

	return unpadded, nil
}

func padPKCS7(data []byte) []byte {
	padLen := aes.BlockSize - len(data)%aes.BlockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func unpadPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty padded data", domain.ErrIntegrity)
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", domain.ErrIntegrity)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: invalid padding", domain.ErrIntegrity)
		}
	}
	return data[:len(data)-padLen], nil
}
