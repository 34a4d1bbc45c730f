package storage

import (
	"context"
	"time"

	"github.com/iudanet/ispadmin/internal/models"
)

// SecretStorage defines interface for named application secrets
type SecretStorage interface {
	// GetSecret retrieves a secret by name
	// Returns ErrSecretNotFound if it was never created
	GetSecret(ctx context.Context, name string) (*models.Secret, error)

	// CreateSecret stores a new secret
	// Returns ErrSecretExists if a concurrent writer created the name first;
	// the caller must re-read and use the stored value (first writer wins)
	CreateSecret(ctx context.Context, secret *models.Secret) error
}

// HistoryStorage defines interface for the append-only password history
type HistoryStorage interface {
	// AddHistoryEntry appends an accepted password hash for an account
	AddHistoryEntry(ctx context.Context, entry *models.PasswordHistoryEntry) error

	// GetRecentHistory returns up to limit newest history entries for an account,
	// ordered from newest to oldest
	GetRecentHistory(ctx context.Context, accountID string, limit int) ([]*models.PasswordHistoryEntry, error)
}

// AttemptStorage defines interface for the login attempt audit log
type AttemptStorage interface {
	// RecordAttempt appends a login attempt row
	RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error

	// CountRecentFailuresByUsername counts failed attempts for a username since the cutoff
	CountRecentFailuresByUsername(ctx context.Context, username string, since time.Time) (int, error)

	// CountRecentFailuresBySource counts failed attempts from a source address since the cutoff
	CountRecentFailuresBySource(ctx context.Context, sourceAddr string, since time.Time) (int, error)

	// OldestRecentFailureBySource returns the time of the oldest failed attempt
	// from a source address since the cutoff; ok is false when there are none
	OldestRecentFailureBySource(ctx context.Context, sourceAddr string, since time.Time) (time.Time, bool, error)
}

// LockStorage defines interface for per-account lock state
type LockStorage interface {
	// GetLockState retrieves lock state for an account
	// Returns a zero-value state (unlocked, no failures) if no row exists yet
	GetLockState(ctx context.Context, accountID string) (*models.AccountLockState, error)

	// UpsertLockState creates or replaces the lock state row for an account
	UpsertLockState(ctx context.Context, state *models.AccountLockState) error
}

// ResetTokenStorage defines interface for password reset tokens
type ResetTokenStorage interface {
	// CreateResetToken stores a new reset token
	CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error

	// GetActiveResetToken retrieves the unused reset token matching account and token value
	// Returns ErrResetTokenNotFound if no such token exists or it was already used
	GetActiveResetToken(ctx context.Context, accountID, token string) (*models.PasswordResetToken, error)

	// MarkResetTokenUsed marks a single token as used
	// Returns ErrResetTokenNotFound if the token does not exist or is already used
	MarkResetTokenUsed(ctx context.Context, tokenID int64) error

	// InvalidateResetTokens marks all unused tokens for an account as used
	// Called when a new token is issued so only the newest one stays valid
	InvalidateResetTokens(ctx context.Context, accountID string) error
}
