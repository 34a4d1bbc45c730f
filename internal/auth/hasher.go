package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

// Параметры PBKDF2-HMAC-SHA256
const (
	// DefaultIterations - количество итераций KDF (CPU-hard, memory-light)
	DefaultIterations = 1_200_000
	// KeyLength - длина производного ключа в байтах
	KeyLength = 32
	// SaltSize - размер общей соли в байтах
	SaltSize = 32
)

// Hasher вычисляет и проверяет PBKDF2 digest паролей
// Соль общая на деплоймент и берется из secret store при старте
type Hasher struct {
	salt       []byte
	iterations int
}

// NewHasher создает Hasher с заданной солью и количеством итераций
// iterations настраиваемый, чтобы тесты могли использовать низкое значение
func NewHasher(salt []byte, iterations int) *Hasher {
	return &Hasher{
		salt:       salt,
		iterations: iterations,
	}
}

// Hash вычисляет digest пароля и возвращает его в base64
// Детерминированный: один пароль при одной соли дает один digest,
// это нужно для сравнения с историей паролей
func (h *Hasher) Hash(password string) string {
	key := pbkdf2.Key([]byte(password), h.salt, h.iterations, KeyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

// Verify проверяет пароль против сохраненного digest
// Никогда не возвращает ошибку: некорректный digest означает false
// Сравнение за константное время
func (h *Hasher) Verify(password, digest string) bool {
	stored, err := base64.StdEncoding.DecodeString(digest)
	if err != nil {
		return false
	}

	if len(stored) != KeyLength {
		return false
	}

	computed := pbkdf2.Key([]byte(password), h.salt, h.iterations, KeyLength, sha256.New)

	return subtle.ConstantTimeCompare(computed, stored) == 1
}
