package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/safar/furnishop/internal/cart"
	"github.com/safar/furnishop/internal/catalog"
	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/safar/furnishop/internal/store"
	"github.com/shopspring/decimal"
)

func TestCatalogListingJoinsNamesAndImages(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	chairs, err := store.CreateCategory(ctx, db, "Chairs")
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	dining, err := store.CreateProductType(ctx, db, "Dining", chairs.ID)
	if err != nil {
		t.Fatalf("Create product type: %v", err)
	}

	svc := catalog.NewService(db, nil)
	created, err := svc.CreateProduct(ctx, store.CreateProductParams{
		Name:          "Windsor Chair",
		Price:         decimal.RequireFromString("149.99"),
		StockQuantity: 12,
		CategoryID:    chairs.ID,
		ProductTypeID: dining.ID,
		ImageURLs:     []string{"https://cdn.example.com/w1.jpg", "https://cdn.example.com/w2.jpg"},
	})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	seedProduct(t, db, "Uncategorised Lamp", 20, 1)

	page, err := svc.ListProducts(ctx, chairs.ID, 1, 10)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}
	products := page.Items.([]models.Product)
	if page.Total != 1 || len(products) != 1 {
		t.Fatalf("Expected 1 chair, got total %d", page.Total)
	}
	if products[0].CategoryName != "Chairs" || products[0].ProductTypeName != "Dining" {
		t.Errorf("Expected joined names, got %q / %q", products[0].CategoryName, products[0].ProductTypeName)
	}
	if len(products[0].Images) != 2 || products[0].Images[0].Position != 0 {
		t.Errorf("Expected 2 ordered images, got %+v", products[0].Images)
	}

	got, err := svc.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if !got.Price.Equal(decimal.RequireFromString("149.99")) {
		t.Errorf("Expected price 149.99, got %s", got.Price)
	}

	_, err = svc.CreateProduct(ctx, store.CreateProductParams{Name: "Ghost", CategoryID: "missing"})
	if !errors.Is(err, database.ErrCategoryNotFound) {
		t.Errorf("Expected category not found, got: %v", err)
	}
}

func TestCartAccumulatesQuantity(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer := seedCustomer(t, db, "cart@example.com", models.RoleCustomer)
	mirror := seedProduct(t, db, "Mirror", 75, 4)

	svc := cart.NewService(db)

	empty, err := svc.Get(ctx, customer.ID)
	if err != nil {
		t.Fatalf("Get empty cart: %v", err)
	}
	if len(empty.Items) != 0 {
		t.Errorf("Expected empty cart, got %+v", empty.Items)
	}

	if _, err := svc.Add(ctx, customer.ID, mirror.ID, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	c, err := svc.Add(ctx, customer.ID, mirror.ID, 2)
	if err != nil {
		t.Fatalf("Add again: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 3 {
		t.Errorf("Expected one line with quantity 3, got %+v", c.Items)
	}

	c, err = svc.Remove(ctx, customer.ID, mirror.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(c.Items) != 0 {
		t.Errorf("Expected empty cart after remove, got %+v", c.Items)
	}

	_, err = svc.Remove(ctx, customer.ID, mirror.ID)
	if !errors.Is(err, database.ErrCartItemNotFound) {
		t.Errorf("Expected cart item not found, got: %v", err)
	}
}
