package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
)

func TestAccountStorage_CreateAccount(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		wantError error
		account   *models.Account
		name      string
	}{
		{
			name: "create new account successfully",
			account: &models.Account{
				ID:           uuid.New().String(),
				Username:     "alice",
				Email:        "alice@example.com",
				PasswordHash: "digest123",
				CreatedAt:    time.Now(),
				LastLogin:    nil,
			},
			wantError: nil,
		},
		{
			name: "create account with last login",
			account: &models.Account{
				ID:           uuid.New().String(),
				Username:     "bob",
				Email:        "bob@example.com",
				PasswordHash: "digest456",
				CreatedAt:    time.Now(),
				LastLogin:    timePtr(time.Now()),
			},
			wantError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateAccount(ctx, tt.account)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
			} else {
				require.NoError(t, err)

				// Verify account was created
				retrieved, err := s.GetAccountByID(ctx, tt.account.ID)
				require.NoError(t, err)
				assert.Equal(t, tt.account.ID, retrieved.ID)
				assert.Equal(t, tt.account.Username, retrieved.Username)
				assert.Equal(t, tt.account.Email, retrieved.Email)
				assert.Equal(t, tt.account.PasswordHash, retrieved.PasswordHash)
			}
		})
	}
}

func TestAccountStorage_CreateAccount_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account1 := &models.Account{
		ID:           uuid.New().String(),
		Username:     "duplicate",
		Email:        "first@example.com",
		PasswordHash: "digest1",
		CreatedAt:    time.Now(),
	}
	err := s.CreateAccount(ctx, account1)
	require.NoError(t, err)

	// Тот же username, другой email
	account2 := &models.Account{
		ID:           uuid.New().String(),
		Username:     "duplicate",
		Email:        "second@example.com",
		PasswordHash: "digest2",
		CreatedAt:    time.Now(),
	}
	err = s.CreateAccount(ctx, account2)
	assert.ErrorIs(t, err, storage.ErrAccountExists)
}

func TestAccountStorage_CreateAccount_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account1 := &models.Account{
		ID:           uuid.New().String(),
		Username:     "first",
		Email:        "shared@example.com",
		PasswordHash: "digest1",
		CreatedAt:    time.Now(),
	}
	err := s.CreateAccount(ctx, account1)
	require.NoError(t, err)

	// Тот же email, другой username
	account2 := &models.Account{
		ID:           uuid.New().String(),
		Username:     "second",
		Email:        "shared@example.com",
		PasswordHash: "digest2",
		CreatedAt:    time.Now(),
	}
	err = s.CreateAccount(ctx, account2)
	assert.ErrorIs(t, err, storage.ErrEmailExists)
}

func TestAccountStorage_GetAccountByUsername(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := &models.Account{
		ID:           uuid.New().String(),
		Username:     "findme",
		Email:        "findme@example.com",
		PasswordHash: "digest123",
		CreatedAt:    time.Now(),
		LastLogin:    timePtr(time.Now()),
	}
	err := s.CreateAccount(ctx, account)
	require.NoError(t, err)

	retrieved, err := s.GetAccountByUsername(ctx, "findme")
	require.NoError(t, err)
	assert.Equal(t, account.ID, retrieved.ID)
	require.NotNil(t, retrieved.LastLogin)

	_, err = s.GetAccountByUsername(ctx, "nonexistent")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestAccountStorage_GetAccountByEmail(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := &models.Account{
		ID:           uuid.New().String(),
		Username:     "emailuser",
		Email:        "email@example.com",
		PasswordHash: "digest123",
		CreatedAt:    time.Now(),
	}
	err := s.CreateAccount(ctx, account)
	require.NoError(t, err)

	retrieved, err := s.GetAccountByEmail(ctx, "email@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, retrieved.ID)

	_, err = s.GetAccountByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestAccountStorage_UpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	accountID := createTestAccount(t, ctx, s)

	err := s.UpdatePasswordHash(ctx, accountID, "newdigest")
	require.NoError(t, err)

	retrieved, err := s.GetAccountByID(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "newdigest", retrieved.PasswordHash)

	err = s.UpdatePasswordHash(ctx, "nonexistent-id", "digest")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestAccountStorage_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	accountID := createTestAccount(t, ctx, s)

	now := time.Now()
	err := s.UpdateLastLogin(ctx, accountID, now)
	require.NoError(t, err)

	retrieved, err := s.GetAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.LastLogin)
	assert.WithinDuration(t, now, *retrieved.LastLogin, time.Second)

	err = s.UpdateLastLogin(ctx, "nonexistent-id", now)
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

// Helper functions

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

func createTestAccount(t *testing.T, ctx context.Context, s *Storage) string {
	accountID := uuid.New().String()
	account := &models.Account{
		ID:           accountID,
		Username:     "user_" + accountID[:8],
		Email:        accountID[:8] + "@example.com",
		PasswordHash: "digest",
		CreatedAt:    time.Now(),
		LastLogin:    nil,
	}

	err := s.CreateAccount(ctx, account)
	require.NoError(t, err)

	return accountID
}

func timePtr(t time.Time) *time.Time {
	return &t
}
