package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/safar/furnishop/internal/store"
	log "github.com/sirupsen/logrus"
)

// Accounts registers customers and signs them in.
type Accounts struct {
	db     *sql.DB
	tokens *Tokens
}

func NewAccounts(db *sql.DB, tokens *Tokens) *Accounts {
	return &Accounts{db: db, tokens: tokens}
}

// Session is a signed-in customer with their bearer token.
type Session struct {
	Customer *models.Customer `json:"customer"`
	Token    string           `json:"token"`
}

func (a *Accounts) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", database.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", database.ErrInvalidInput)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	customer, err := store.CreateCustomer(ctx, a.db, name, email, hash, models.RoleCustomer)
	if err != nil {
		return nil, err
	}

	log.WithField("customer_id", customer.ID).Info("customer registered")
	return a.session(customer)
}

func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	customer, err := store.GetCustomerByEmail(ctx, a.db, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, database.ErrCustomerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := CheckPassword(customer.PasswordHash, password); err != nil {
		return nil, err
	}

	return a.session(customer)
}

// Lookup resolves a token subject for the Gate.
func (a *Accounts) Lookup(ctx context.Context, id string) (*models.Customer, error) {
	return store.GetCustomer(ctx, a.db, id)
}

func (a *Accounts) session(customer *models.Customer) (*Session, error) {
	token, err := a.tokens.Issue(customer.ID, customer.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Customer: customer, Token: token}, nil
}
