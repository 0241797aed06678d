package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/safar/furnishop/internal/reviews"
	"github.com/safar/furnishop/internal/store"
)

func TestReviewUpsertKeepsOneReview(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer := seedCustomer(t, db, "critic@example.com", models.RoleCustomer)
	bed := seedProduct(t, db, "Bed", 800, 3)

	svc := reviews.NewService(db)

	first, err := svc.Submit(ctx, reviews.Submission{CustomerID: customer.ID, ProductID: bed.ID, Rating: 2, Comment: "Creaky"})
	if err != nil {
		t.Fatalf("Submit first review: %v", err)
	}

	second, err := svc.Submit(ctx, reviews.Submission{CustomerID: customer.ID, ProductID: bed.ID, Rating: 5, Comment: "Fixed after tightening"})
	if err != nil {
		t.Fatalf("Submit second review: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected the same review to be updated, got %s and %s", first.ID, second.ID)
	}

	n, err := store.CountReviews(ctx, db, customer.ID, bed.ID)
	if err != nil {
		t.Fatalf("Count reviews: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 review, got %d", n)
	}

	list, err := svc.List(ctx, bed.ID)
	if err != nil {
		t.Fatalf("List reviews: %v", err)
	}
	if len(list) != 1 || list[0].Rating != 5 || list[0].CustomerName == "" {
		t.Errorf("Unexpected reviews: %+v", list)
	}

	_, err = svc.Submit(ctx, reviews.Submission{CustomerID: customer.ID, ProductID: "00000000-0000-0000-0000-000000000000", Rating: 4})
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found, got: %v", err)
	}
}
