package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
)

const customerColumns = `id, name, email, password_hash, role, created_at`

func scanCustomer(row rowScanner) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Role, &c.CreatedAt)
	return c, err
}

func CreateCustomer(ctx context.Context, q database.Querier, name, email, passwordHash, role string) (*models.Customer, error) {
	query := `
		INSERT INTO customers (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + customerColumns

	customer, err := scanCustomer(q.QueryRowContext(ctx, query,
		newID(), name, strings.ToLower(email), passwordHash, role))
	if err != nil {
		if database.IsUniqueViolation(err, "customers_email_key") {
			return nil, database.ErrEmailTaken
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	return customer, nil
}

// GetCustomer loads a customer by id. The password hash is not selected.
func GetCustomer(ctx context.Context, q database.Querier, id string) (*models.Customer, error) {
	c := &models.Customer{}

	query := `
		SELECT id, name, email, role, created_at
		FROM customers
		WHERE id = $1`

	err := q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.Role, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return c, nil
}

// GetCustomerByEmail loads a customer including the password hash, for login.
func GetCustomerByEmail(ctx context.Context, q database.Querier, email string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	customer, err := scanCustomer(q.QueryRowContext(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}

	return customer, nil
}
