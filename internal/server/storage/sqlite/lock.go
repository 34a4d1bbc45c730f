package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/ispadmin/internal/models"
)

// GetLockState retrieves lock state for an account
// Если строки еще нет, возвращает нулевое состояние (не заблокирован)
func (s *Storage) GetLockState(ctx context.Context, accountID string) (*models.AccountLockState, error) {
	query := `
		SELECT account_id, locked, locked_until, failed_attempts
		FROM account_lock_state
		WHERE account_id = ?
	`

	state := &models.AccountLockState{}
	var lockedUntil sql.NullTime

	err := s.db.QueryRowContext(ctx, query, accountID).Scan(
		&state.AccountID,
		&state.Locked,
		&lockedUntil,
		&state.FailedAttempts,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.AccountLockState{AccountID: accountID}, nil
		}
		return nil, fmt.Errorf("failed to get lock state: %w", err)
	}

	if lockedUntil.Valid {
		state.LockedUntil = &lockedUntil.Time
	}

	return state, nil
}

// UpsertLockState creates or replaces the lock state row for an account
// Атомарный upsert исключает lost update при конкурентных попытках входа
func (s *Storage) UpsertLockState(ctx context.Context, state *models.AccountLockState) error {
	query := `
		INSERT INTO account_lock_state (account_id, locked, locked_until, failed_attempts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			locked = excluded.locked,
			locked_until = excluded.locked_until,
			failed_attempts = excluded.failed_attempts
	`

	_, err := s.db.ExecContext(ctx, query,
		state.AccountID,
		state.Locked,
		state.LockedUntil,
		state.FailedAttempts,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert lock state: %w", err)
	}

	return nil
}
