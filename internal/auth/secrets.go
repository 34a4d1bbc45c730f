package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
)

// Имена секретов приложения
const (
	// SecretPasswordSalt - общая соль для PBKDF2
	SecretPasswordSalt = "password_salt"
	// SecretJWTKey - ключ подписи JWT токенов
	SecretJWTKey = "jwt_signing_key"
)

// SecretService лениво создает и читает именованные секреты приложения
// Без durable секрета работать нельзя: ошибка персистентности фатальна
type SecretService struct {
	secrets storage.SecretStorage
}

// NewSecretService создает новый SecretService
func NewSecretService(secrets storage.SecretStorage) *SecretService {
	return &SecretService{secrets: secrets}
}

// GetOrCreate возвращает секрет по имени, создавая его при первом обращении
// Конкурентное создание сходится к одному значению: при конфликте по имени
// проигравший перечитывает сохраненное значение (первый писатель побеждает)
func (s *SecretService) GetOrCreate(ctx context.Context, name string) ([]byte, error) {
	secret, err := s.secrets.GetSecret(ctx, name)
	if err == nil {
		return decodeSecret(secret)
	}

	if !errors.Is(err, storage.ErrSecretNotFound) {
		return nil, fmt.Errorf("failed to read secret %q: %w", name, err)
	}

	// Секрета еще нет - генерируем 32 криптографически случайных байта
	value := make([]byte, SaltSize)
	if _, err := rand.Read(value); err != nil {
		return nil, fmt.Errorf("failed to generate secret %q: %w", name, err)
	}

	newSecret := &models.Secret{
		Name:      name,
		Value:     base64.StdEncoding.EncodeToString(value),
		CreatedAt: time.Now(),
	}

	err = s.secrets.CreateSecret(ctx, newSecret)
	if err == nil {
		return value, nil
	}

	if errors.Is(err, storage.ErrSecretExists) {
		// Проиграли гонку создания - используем значение победителя
		secret, err := s.secrets.GetSecret(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read secret %q after conflict: %w", name, err)
		}
		return decodeSecret(secret)
	}

	return nil, fmt.Errorf("failed to store secret %q: %w", name, err)
}

// decodeSecret декодирует base64 значение секрета
func decodeSecret(secret *models.Secret) ([]byte, error) {
	value, err := base64.StdEncoding.DecodeString(secret.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode secret %q: %w", secret.Name, err)
	}
	return value, nil
}
