package storage

import (
	"context"
	"time"

	"github.com/iudanet/ispadmin/internal/models"
)

// AccountStorage defines interface for account persistence
type AccountStorage interface {
	// CreateAccount creates a new account in the storage
	// Returns ErrAccountExists if username is taken, ErrEmailExists if email is taken
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccountByUsername retrieves account by username
	// Returns ErrAccountNotFound if account doesn't exist
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)

	// GetAccountByEmail retrieves account by email
	// Returns ErrAccountNotFound if account doesn't exist
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetAccountByID retrieves account by ID
	// Returns ErrAccountNotFound if account doesn't exist
	GetAccountByID(ctx context.Context, accountID string) (*models.Account, error)

	// UpdatePasswordHash replaces the stored password hash
	// Returns ErrAccountNotFound if account doesn't exist
	UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) error

	// UpdateLastLogin updates the last login timestamp
	UpdateLastLogin(ctx context.Context, accountID string, lastLogin time.Time) error
}
