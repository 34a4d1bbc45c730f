package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
)

// CreateResetToken stores a new reset token
func (s *Storage) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (account_id, email, token, created_at, expires_at, used)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		token.AccountID,
		token.Email,
		token.Token,
		token.CreatedAt,
		token.ExpiresAt,
		token.Used,
	)

	if err != nil {
		return fmt.Errorf("failed to insert reset token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get reset token id: %w", err)
	}
	token.ID = id

	return nil
}

// GetActiveResetToken retrieves the unused reset token matching account and token value
func (s *Storage) GetActiveResetToken(ctx context.Context, accountID, tokenValue string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, account_id, email, token, created_at, expires_at, used
		FROM password_reset_tokens
		WHERE account_id = ? AND token = ? AND used = 0
	`

	token := &models.PasswordResetToken{}

	err := s.db.QueryRowContext(ctx, query, accountID, tokenValue).Scan(
		&token.ID,
		&token.AccountID,
		&token.Email,
		&token.Token,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.Used,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return token, nil
}

// MarkResetTokenUsed marks a single token as used
// WHERE used = 0 гарантирует, что токен потребляется ровно один раз
func (s *Storage) MarkResetTokenUsed(ctx context.Context, tokenID int64) error {
	query := `UPDATE password_reset_tokens SET used = 1 WHERE id = ? AND used = 0`

	result, err := s.db.ExecContext(ctx, query, tokenID)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrResetTokenNotFound
	}

	return nil
}

// InvalidateResetTokens marks all unused tokens for an account as used
func (s *Storage) InvalidateResetTokens(ctx context.Context, accountID string) error {
	query := `UPDATE password_reset_tokens SET used = 1 WHERE account_id = ? AND used = 0`

	if _, err := s.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to invalidate reset tokens: %w", err)
	}

	return nil
}
