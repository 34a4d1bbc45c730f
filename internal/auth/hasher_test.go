package auth

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testIterations - низкое количество итераций для быстрых тестов
// Продакшн использует DefaultIterations
const testIterations = 4096

func testSalt(t *testing.T) []byte {
	t.Helper()
	salt := make([]byte, SaltSize)
	_, err := rand.Read(salt)
	require.NoError(t, err)
	return salt
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(testSalt(t), testIterations)

	digest := h.Hash("Str0ng!Pass1")

	assert.True(t, h.Verify("Str0ng!Pass1", digest))
	assert.False(t, h.Verify("wrong-password", digest))
	assert.False(t, h.Verify("", digest))
}

func TestHasher_Deterministic(t *testing.T) {
	h := NewHasher(testSalt(t), testIterations)

	// Один пароль при одной соли дает один digest
	// (нужно для сравнения с историей паролей)
	digest1 := h.Hash("Str0ng!Pass1")
	digest2 := h.Hash("Str0ng!Pass1")
	assert.Equal(t, digest1, digest2)
}

func TestHasher_DifferentSalts(t *testing.T) {
	h1 := NewHasher(testSalt(t), testIterations)
	h2 := NewHasher(testSalt(t), testIterations)

	// Разные соли дают разные digest для одного пароля
	digest1 := h1.Hash("Str0ng!Pass1")
	digest2 := h2.Hash("Str0ng!Pass1")
	assert.NotEqual(t, digest1, digest2)

	// Digest от чужой соли не проходит проверку
	assert.False(t, h2.Verify("Str0ng!Pass1", digest1))
}

func TestHasher_Verify_MalformedDigest(t *testing.T) {
	h := NewHasher(testSalt(t), testIterations)

	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty digest", digest: ""},
		{name: "not base64", digest: "!!!not-base64!!!"},
		{name: "wrong length", digest: "c2hvcnQ="}, // валидный base64, но не 32 байта
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Некорректный digest означает false, никогда не panic/error
			assert.False(t, h.Verify("Str0ng!Pass1", tt.digest))
		})
	}
}
