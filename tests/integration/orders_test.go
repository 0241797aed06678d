package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/safar/furnishop/internal/auth"
	"github.com/safar/furnishop/internal/checkout"
	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/safar/furnishop/internal/orders"
	"github.com/safar/furnishop/internal/store"
)

func placeOrder(t *testing.T, svc *checkout.Service, customerID, productID string) *models.Order {
	t.Helper()
	result, err := svc.Checkout(context.Background(), checkout.CartCheckout{
		CustomerID:    customerID,
		Items:         items(t, map[string]interface{}{"product_id": productID, "quantity": 1, "price": 10}),
		PaymentMethod: "Cash on Delivery",
		TotalAmount:   total(10),
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	return result.Order
}

func TestCancelOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := seedCustomer(t, db, "owner@example.com", models.RoleCustomer)
	other := seedCustomer(t, db, "other@example.com", models.RoleCustomer)
	admin := seedCustomer(t, db, "admin@example.com", models.RoleAdmin)
	vase := seedProduct(t, db, "Vase", 10, 10)

	checkoutSvc := checkout.NewService(db)
	svc := orders.NewService(db, nil)

	order := placeOrder(t, checkoutSvc, owner.ID, vase.ID)

	_, err := svc.Cancel(ctx, auth.Identity{ID: other.ID, Role: other.Role}, order.ID)
	if !errors.Is(err, database.ErrForbidden) {
		t.Errorf("Expected forbidden, got: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, auth.Identity{ID: owner.ID, Role: owner.Role}, order.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled {
		t.Errorf("Expected Cancelled, got %s", cancelled.Status)
	}

	_, err = svc.Cancel(ctx, auth.Identity{ID: owner.ID, Role: owner.Role}, order.ID)
	if !errors.Is(err, database.ErrNotCancellable) {
		t.Errorf("Expected not cancellable, got: %v", err)
	}

	shipped := placeOrder(t, checkoutSvc, owner.ID, vase.ID)
	if _, err := svc.SetStatus(ctx, shipped.ID, models.OrderStatusToReceive); err != nil {
		t.Fatalf("Set status: %v", err)
	}
	_, err = svc.Cancel(ctx, auth.Identity{ID: admin.ID, Role: admin.Role}, shipped.ID)
	if !errors.Is(err, database.ErrNotCancellable) {
		t.Errorf("Expected not cancellable for To Receive, got: %v", err)
	}

	toShip := placeOrder(t, checkoutSvc, owner.ID, vase.ID)
	if _, err := svc.SetStatus(ctx, toShip.ID, models.OrderStatusToShip); err != nil {
		t.Fatalf("Set status: %v", err)
	}
	if _, err := svc.Cancel(ctx, auth.Identity{ID: admin.ID, Role: admin.Role}, toShip.ID); err != nil {
		t.Errorf("Admin should cancel a To Ship order: %v", err)
	}

	_, err = svc.Cancel(ctx, auth.Identity{ID: owner.ID, Role: owner.Role}, "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, database.ErrOrderNotFound) {
		t.Errorf("Expected order not found, got: %v", err)
	}
}

func TestToggleLock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := seedCustomer(t, db, "lock@example.com", models.RoleCustomer)
	rug := seedProduct(t, db, "Rug", 10, 5)

	order := placeOrder(t, checkout.NewService(db), owner.ID, rug.ID)
	svc := orders.NewService(db, nil)

	locked, err := svc.ToggleLock(ctx, order.ID)
	if err != nil {
		t.Fatalf("Toggle lock: %v", err)
	}
	if !locked.IsLocked {
		t.Error("Order should be locked")
	}

	unlocked, err := svc.ToggleLock(ctx, order.ID)
	if err != nil {
		t.Fatalf("Toggle lock: %v", err)
	}
	if unlocked.IsLocked {
		t.Error("Order should be unlocked")
	}
}

func TestListOrdersCursor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := seedCustomer(t, db, "history@example.com", models.RoleCustomer)
	cushion := seedProduct(t, db, "Cushion", 10, 100)

	checkoutSvc := checkout.NewService(db)
	for i := 0; i < 15; i++ {
		placeOrder(t, checkoutSvc, owner.ID, cushion.ID)
	}

	page1, err := store.ListOrdersCursor(ctx, db, owner.ID, "", 10)
	if err != nil {
		t.Fatalf("List orders page 1: %v", err)
	}

	if !page1.HasMore {
		t.Error("Page 1 should have more results")
	}

	if page1.NextCursor == "" {
		t.Error("Page 1 should have a next cursor")
	}

	page2, err := store.ListOrdersCursor(ctx, db, owner.ID, page1.NextCursor, 10)
	if err != nil {
		t.Fatalf("List orders page 2: %v", err)
	}

	if page2.HasMore {
		t.Error("Page 2 should not have more results")
	}

	if got := len(page2.Items.([]models.Order)); got != 5 {
		t.Errorf("Expected 5 orders on page 2, got %d", got)
	}
}
