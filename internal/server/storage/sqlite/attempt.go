package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/ispadmin/internal/models"
)

// RecordAttempt appends a login attempt row
func (s *Storage) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (username, successful, source_addr, attempt_time)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		attempt.Username,
		attempt.Successful,
		attempt.SourceAddr,
		attempt.AttemptTime,
	)

	if err != nil {
		return fmt.Errorf("failed to insert login attempt: %w", err)
	}

	return nil
}

// CountRecentFailuresByUsername counts failed attempts for a username since the cutoff
func (s *Storage) CountRecentFailuresByUsername(ctx context.Context, username string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE username = ? AND successful = 0 AND attempt_time >= ?
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, username, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count failed attempts: %w", err)
	}

	return count, nil
}

// CountRecentFailuresBySource counts failed attempts from a source address since the cutoff
func (s *Storage) CountRecentFailuresBySource(ctx context.Context, sourceAddr string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE source_addr = ? AND successful = 0 AND attempt_time >= ?
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, sourceAddr, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count failed attempts by source: %w", err)
	}

	return count, nil
}

// OldestRecentFailureBySource returns the time of the oldest failed attempt
// from a source address since the cutoff
// Используется для вычисления оставшегося времени блокировки по IP
func (s *Storage) OldestRecentFailureBySource(ctx context.Context, sourceAddr string, since time.Time) (time.Time, bool, error) {
	query := `
		SELECT attempt_time
		FROM login_attempts
		WHERE source_addr = ? AND successful = 0 AND attempt_time >= ?
		ORDER BY attempt_time ASC
		LIMIT 1
	`

	var attemptTime time.Time
	err := s.db.QueryRowContext(ctx, query, sourceAddr, since).Scan(&attemptTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to get oldest failed attempt: %w", err)
	}

	return attemptTime, true, nil
}
