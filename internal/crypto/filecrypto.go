package crypto

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"securecollab/internal/domain"
)

// EncryptedSuffix добавляется к пути зашифрованного файла
const EncryptedSuffix = ".enc"

// SecretProvider отдает мастер-секрет для вывода ключей. Явная зависимость
// вместо глобальной константы: упрощает тесты и оставляет место для ротации.
type SecretProvider interface {
	MasterSecret() []byte
}

// StaticSecret - простейший SecretProvider поверх строки из конфигурации
type StaticSecret []byte

func (s StaticSecret) MasterSecret() []byte { return []byte(s) }

// FileCrypto шифрует и расшифровывает файлы на диске целиком.
// Формат на диске: [16 байт соли][Fernet-токен]. Соль хранится вместе с
// данными, поэтому для расшифровки достаточно мастер-секрета.
// Работает с файлами в памяти - рассчитан на десятки мегабайт, не на потоки.
type FileCrypto struct {
	secrets SecretProvider
}

func NewFileCrypto(secrets SecretProvider) *FileCrypto {
	return &FileCrypto{secrets: secrets}
}

// EncryptFile шифрует файл и пишет результат рядом с суффиксом .enc.
// Исходный файл не удаляется - это ответственность вызывающего кода.
func (f *FileCrypto) EncryptFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: source file %s", domain.ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: failed to read source: %v", domain.ErrStorage, err)
	}

	key, salt, err := DeriveKey(f.secrets.MasterSecret(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	c, err := NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	token, err := c.Encrypt(data)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}

	blob := make([]byte, 0, len(salt)+len(token))
	blob = append(blob, salt...)
	blob = append(blob, token...)

	encryptedPath := path + EncryptedSuffix
	if err := os.WriteFile(encryptedPath, blob, 0o600); err != nil {
		// Недописанный артефакт не должен оставаться на диске
		os.Remove(encryptedPath)
		return "", fmt.Errorf("%w: failed to write encrypted file: %v", domain.ErrStorage, err)
	}

	return encryptedPath, nil
}

// DecryptFile расшифровывает файл, записанный EncryptFile, и возвращает
// путь к расшифрованной копии. Если естественный путь уже занят, имя
// дополняется суффиксом вместо перезаписи чужого файла.
func (f *FileCrypto) DecryptFile(encryptedPath string) (string, error) {
	data, err := os.ReadFile(encryptedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: encrypted file %s", domain.ErrNotFound, encryptedPath)
		}
		return "", fmt.Errorf("%w: failed to read encrypted file: %v", domain.ErrStorage, err)
	}

	if len(data) < SaltLength {
		return "", fmt.Errorf("%w: blob shorter than salt prefix", domain.ErrIntegrity)
	}

	salt, token := data[:SaltLength], data[SaltLength:]

	key, _, err := DeriveKey(f.secrets.MasterSecret(), salt)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	c, err := NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext, err := c.Decrypt(token)
	if err != nil {
		return "", err
	}

	decryptedPath := strings.TrimSuffix(encryptedPath, EncryptedSuffix)
	if decryptedPath == encryptedPath {
		decryptedPath = encryptedPath + ".dec"
	}

	if _, err := os.Stat(decryptedPath); err == nil {
		ext := filepath.Ext(decryptedPath)
		decryptedPath = strings.TrimSuffix(decryptedPath, ext) + "_decrypted" + ext
	}

	if err := os.WriteFile(decryptedPath, plaintext, 0o600); err != nil {
		os.Remove(decryptedPath)
		return "", fmt.Errorf("%w: failed to write decrypted file: %v", domain.ErrStorage, err)
	}

	return decryptedPath, nil
}
