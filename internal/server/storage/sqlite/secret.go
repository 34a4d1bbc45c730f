package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
)

// GetSecret retrieves a secret by name
func (s *Storage) GetSecret(ctx context.Context, name string) (*models.Secret, error) {
	query := `
		SELECT name, value, created_at
		FROM secrets
		WHERE name = ?
	`

	secret := &models.Secret{}

	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&secret.Name,
		&secret.Value,
		&secret.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSecretNotFound
		}
		return nil, fmt.Errorf("failed to get secret: %w", err)
	}

	return secret, nil
}

// CreateSecret stores a new secret
// PRIMARY KEY по name гарантирует, что при гонке создания выигрывает
// первый писатель; проигравший получает ErrSecretExists и перечитывает
func (s *Storage) CreateSecret(ctx context.Context, secret *models.Secret) error {
	query := `
		INSERT INTO secrets (name, value, created_at)
		VALUES (?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		secret.Name,
		secret.Value,
		secret.CreatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: secrets.name") {
			return storage.ErrSecretExists
		}
		return fmt.Errorf("failed to insert secret: %w", err)
	}

	return nil
}
