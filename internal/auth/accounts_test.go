package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerCols = []string{"id", "name", "email", "password_hash", "role", "created_at"}

func newAccounts(t *testing.T) (*Accounts, sqlmock.Sqlmock, *Tokens) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens := NewTokens("secret", time.Hour)
	return NewAccounts(db, tokens), mock, tokens
}

func TestRegister(t *testing.T) {
	accounts, mock, tokens := newAccounts(t)

	mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs(sqlmock.AnyArg(), "Ana", "ana@example.com", sqlmock.AnyArg(), models.RoleCustomer).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow("c1", "Ana", "ana@example.com", "hash", models.RoleCustomer, time.Now()))

	session, err := accounts.Register(context.Background(), " Ana ", "ana@example.com", "long enough")
	require.NoError(t, err)
	assert.Equal(t, "c1", session.Customer.ID)

	claims, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "c1", claims.Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejects(t *testing.T) {
	accounts, mock, _ := newAccounts(t)

	_, err := accounts.Register(context.Background(), "", "ana@example.com", "long enough")
	assert.ErrorIs(t, err, database.ErrInvalidInput)

	_, err = accounts.Register(context.Background(), "Ana", "not-an-email", "long enough")
	assert.ErrorIs(t, err, database.ErrInvalidInput)

	_, err = accounts.Register(context.Background(), "Ana", "ana@example.com", "short")
	assert.ErrorIs(t, err, database.ErrInvalidInput)

	mock.ExpectQuery(`INSERT INTO customers`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "customers_email_key"})
	_, err = accounts.Register(context.Background(), "Ana", "ana@example.com", "long enough")
	assert.ErrorIs(t, err, database.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin(t *testing.T) {
	accounts, mock, _ := newAccounts(t)

	hash, err := HashPassword("long enough")
	require.NoError(t, err)

	mock.ExpectQuery(`FROM customers WHERE email = \$1`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow("c1", "Ana", "ana@example.com", hash, models.RoleCustomer, time.Now()))

	session, err := accounts.Login(context.Background(), "Ana@Example.com", "long enough")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	mock.ExpectQuery(`FROM customers WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow("c1", "Ana", "ana@example.com", hash, models.RoleCustomer, time.Now()))
	_, err = accounts.Login(context.Background(), "ana@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	mock.ExpectQuery(`FROM customers WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(customerCols))
	_, err = accounts.Login(context.Background(), "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}
