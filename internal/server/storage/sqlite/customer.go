package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
)

// CreateCustomer creates a new customer record
func (s *Storage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, name, internet_package, sector, date_added)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		customer.ID,
		customer.Name,
		customer.InternetPackage,
		customer.Sector,
		customer.DateAdded,
	)

	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	return nil
}

// GetCustomerByID retrieves customer by ID
func (s *Storage) GetCustomerByID(ctx context.Context, customerID string) (*models.Customer, error) {
	query := `
		SELECT id, name, internet_package, sector, date_added
		FROM customers
		WHERE id = ?
	`

	customer := &models.Customer{}

	err := s.db.QueryRowContext(ctx, query, customerID).Scan(
		&customer.ID,
		&customer.Name,
		&customer.InternetPackage,
		&customer.Sector,
		&customer.DateAdded,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// ListCustomers returns all customers ordered by date added (newest first)
func (s *Storage) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	query := `
		SELECT id, name, internet_package, sector, date_added
		FROM customers
		ORDER BY date_added DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var customers []*models.Customer

	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(
			&customer.ID,
			&customer.Name,
			&customer.InternetPackage,
			&customer.Sector,
			&customer.DateAdded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return customers, nil
}

// UpdateCustomer updates customer fields
func (s *Storage) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = ?, internet_package = ?, sector = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		customer.Name,
		customer.InternetPackage,
		customer.Sector,
		customer.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrCustomerNotFound
	}

	return nil
}

// DeleteCustomer deletes customer by ID
func (s *Storage) DeleteCustomer(ctx context.Context, customerID string) error {
	query := `DELETE FROM customers WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, customerID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrCustomerNotFound
	}

	return nil
}
