package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/shopspring/decimal"
)

// GetCart returns the customer's cart. A customer without a cart gets an empty
// one that is not persisted.
func GetCart(ctx context.Context, q database.Querier, customerID string) (*models.Cart, error) {
	cart := &models.Cart{CustomerID: customerID, Items: []models.CartItem{}}

	err := q.QueryRowContext(ctx,
		`SELECT id, updated_at FROM carts WHERE customer_id = $1`,
		customerID).Scan(&cart.ID, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cart, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT ci.product_id, COALESCE(p.name, ''), ci.quantity, ci.price
		 FROM cart_items ci
		 LEFT JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.added_at, ci.product_id`,
		cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return cart, nil
}

// AddCartItem creates the cart on first use and adds quantity to the line for
// productID, inserting the line if it is new.
func AddCartItem(ctx context.Context, q database.Querier, customerID, productID string, quantity int, price decimal.Decimal) error {
	var cartID string
	err := q.QueryRowContext(ctx,
		`INSERT INTO carts (id, customer_id, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (customer_id) DO UPDATE SET updated_at = NOW()
		 RETURNING id`,
		newID(), customerID).Scan(&cartID)
	if err != nil {
		return fmt.Errorf("ensure cart: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity, price, added_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (cart_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
		               price = EXCLUDED.price`,
		cartID, productID, quantity, price)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	return nil
}

func RemoveCartItem(ctx context.Context, q database.Querier, customerID, productID string) error {
	removed, err := RemoveCartProducts(ctx, q, customerID, []string{productID})
	if err != nil {
		return err
	}
	if removed == 0 {
		return database.ErrCartItemNotFound
	}
	return nil
}

// RemoveCartProducts deletes every line for the given products from the
// customer's cart and reports how many lines went away. A missing cart is not
// an error.
func RemoveCartProducts(ctx context.Context, q database.Querier, customerID string, productIDs []string) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	result, err := q.ExecContext(ctx,
		`DELETE FROM cart_items ci
		 USING carts c
		 WHERE ci.cart_id = c.id
		   AND c.customer_id = $1
		   AND ci.product_id = ANY($2)`,
		customerID, pq.Array(productIDs))
	if err != nil {
		return 0, fmt.Errorf("remove cart items: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return removed, nil
}
