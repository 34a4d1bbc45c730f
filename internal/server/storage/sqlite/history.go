package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/ispadmin/internal/models"
)

// AddHistoryEntry appends an accepted password hash for an account
func (s *Storage) AddHistoryEntry(ctx context.Context, entry *models.PasswordHistoryEntry) error {
	query := `
		INSERT INTO password_history (account_id, password_hash, created_at)
		VALUES (?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.AccountID,
		entry.PasswordHash,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	return nil
}

// GetRecentHistory returns up to limit newest history entries for an account
// Всегда ограничена limit - полная история никогда не читается
func (s *Storage) GetRecentHistory(ctx context.Context, accountID string, limit int) ([]*models.PasswordHistoryEntry, error) {
	query := `
		SELECT id, account_id, password_hash, created_at
		FROM password_history
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query password history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*models.PasswordHistoryEntry

	for rows.Next() {
		entry := &models.PasswordHistoryEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.PasswordHash,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}
