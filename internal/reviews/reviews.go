// Package reviews stores one review per customer and product.
package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/safar/furnishop/internal/store"
)

const maxCommentLength = 2000

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

type Submission struct {
	CustomerID string
	ProductID  string
	Rating     int
	Comment    string
}

func (s Submission) validate() error {
	if strings.TrimSpace(s.ProductID) == "" {
		return fmt.Errorf("%w: product id is required", database.ErrInvalidInput)
	}
	if s.Rating < 1 || s.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", database.ErrInvalidInput)
	}
	if len(s.Comment) > maxCommentLength {
		return fmt.Errorf("%w: comment is longer than %d characters", database.ErrInvalidInput, maxCommentLength)
	}
	return nil
}

// Submit creates the customer's review of a product or overwrites the one
// already there. Resubmitting never produces a second review.
func (s *Service) Submit(ctx context.Context, sub Submission) (*models.Review, error) {
	if err := sub.validate(); err != nil {
		return nil, err
	}

	var review *models.Review
	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if _, err := store.GetProduct(ctx, tx, sub.ProductID); err != nil {
			return err
		}

		var err error
		review, err = store.UpsertReview(ctx, tx, sub.CustomerID, sub.ProductID, sub.Rating, strings.TrimSpace(sub.Comment))
		return err
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *Service) List(ctx context.Context, productID string) ([]models.Review, error) {
	return store.ListReviewsByProduct(ctx, s.db, productID)
}
