// Package cart holds a customer's pending purchases until checkout.
package cart

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/safar/furnishop/internal/store"
)

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Get(ctx context.Context, customerID string) (*models.Cart, error) {
	return store.GetCart(ctx, s.db, customerID)
}

// Add puts quantity units of a product in the cart at its current price. The
// cart is created on first use; an existing line has the quantity added.
func (s *Service) Add(ctx context.Context, customerID, productID string, quantity int) (*models.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", database.ErrInvalidInput)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", database.ErrInvalidInput)
	}

	var cart *models.Cart
	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		product, err := store.GetProduct(ctx, tx, productID)
		if err != nil {
			return err
		}

		if err := store.AddCartItem(ctx, tx, customerID, productID, quantity, product.Price); err != nil {
			return err
		}

		cart, err = store.GetCart(ctx, tx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *Service) Remove(ctx context.Context, customerID, productID string) (*models.Cart, error) {
	if err := store.RemoveCartItem(ctx, s.db, customerID, productID); err != nil {
		return nil, err
	}
	return store.GetCart(ctx, s.db, customerID)
}
