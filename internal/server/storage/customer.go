package storage

import (
	"context"

	"github.com/iudanet/ispadmin/internal/models"
)

// CustomerStorage defines interface for customer record persistence
type CustomerStorage interface {
	// CreateCustomer creates a new customer record
	CreateCustomer(ctx context.Context, customer *models.Customer) error

	// GetCustomerByID retrieves customer by ID
	// Returns ErrCustomerNotFound if customer doesn't exist
	GetCustomerByID(ctx context.Context, customerID string) (*models.Customer, error)

	// ListCustomers returns all customers ordered by date added (newest first)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)

	// UpdateCustomer updates customer fields
	// Returns ErrCustomerNotFound if customer doesn't exist
	UpdateCustomer(ctx context.Context, customer *models.Customer) error

	// DeleteCustomer deletes customer by ID
	// Returns ErrCustomerNotFound if customer doesn't exist
	DeleteCustomer(ctx context.Context, customerID string) error
}
