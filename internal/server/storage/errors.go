package storage

import "errors"

// Common storage errors
var (
	// ErrAccountNotFound indicates that account was not found in storage
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists indicates that account with this username already exists
	ErrAccountExists = errors.New("account already exists")

	// ErrEmailExists indicates that account with this email already exists
	ErrEmailExists = errors.New("email already registered")

	// ErrSecretExists indicates that secret with this name was already created
	// by a concurrent writer; callers should re-read the stored value
	ErrSecretExists = errors.New("secret already exists")

	// ErrSecretNotFound indicates that named secret was not found
	ErrSecretNotFound = errors.New("secret not found")

	// ErrResetTokenNotFound indicates that password reset token was not found
	ErrResetTokenNotFound = errors.New("reset token not found")

	// ErrCustomerNotFound indicates that customer was not found in storage
	ErrCustomerNotFound = errors.New("customer not found")
)
