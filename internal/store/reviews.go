package store

import (
	"context"
	"fmt"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
)

// UpsertReview stores the customer's review of a product, overwriting rating,
// comment and date when the pair already has one.
func UpsertReview(ctx context.Context, q database.Querier, customerID, productID string, rating int, comment string) (*models.Review, error) {
	review := &models.Review{}

	err := q.QueryRowContext(ctx,
		`INSERT INTO reviews (id, customer_id, product_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT ON CONSTRAINT reviews_customer_product_key
		 DO UPDATE SET rating = EXCLUDED.rating,
		               comment = EXCLUDED.comment,
		               created_at = NOW()
		 RETURNING id, customer_id, product_id, rating, comment, created_at`,
		newID(), customerID, productID, rating, comment,
	).Scan(
		&review.ID,
		&review.CustomerID,
		&review.ProductID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}

	return review, nil
}

func ListReviewsByProduct(ctx context.Context, q database.Querier, productID string) ([]models.Review, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT r.id, r.customer_id, COALESCE(c.name, ''), r.product_id, r.rating, r.comment, r.created_at
		 FROM reviews r
		 LEFT JOIN customers c ON c.id = r.customer_id
		 WHERE r.product_id = $1
		 ORDER BY r.created_at DESC`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		err := rows.Scan(&r.ID, &r.CustomerID, &r.CustomerName, &r.ProductID, &r.Rating, &r.Comment, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return reviews, nil
}

// CountReviews returns how many reviews the (customer, product) pair has.
func CountReviews(ctx context.Context, q database.Querier, customerID, productID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}
