package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Customer) IsAdmin() bool { return c.Role == RoleAdmin }

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProductType struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	StockQuantity   int             `json:"stock_quantity"`
	Dimensions      string          `json:"dimensions,omitempty"`
	CategoryID      string          `json:"category_id"`
	CategoryName    string          `json:"category_name,omitempty"`
	ProductTypeID   string          `json:"product_type_id"`
	ProductTypeName string          `json:"product_type_name,omitempty"`
	Images          []ProductImage  `json:"images,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Cart struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CartItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Order struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	Status     string        `json:"status"`
	IsLocked   bool          `json:"is_locked"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Details    []OrderDetail `json:"details,omitempty"`
	Payment    *Payment      `json:"payment,omitempty"`
}

// ShortID is the customer-facing order reference: the last six characters of
// the id, upper-cased.
func (o *Order) ShortID() string {
	return ShortID(o.ID)
}

func ShortID(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

type OrderDetail struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Payment struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	Method      string          `json:"method"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAt      time.Time       `json:"paid_at"`
}

type Review struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	ProductID    string    `json:"product_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusToShip    = "To Ship"
	OrderStatusToReceive = "To Receive"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

const (
	PaymentStatusPending              = "Pending"
	PaymentStatusUnpaid               = "Unpaid"
	PaymentStatusAwaitingConfirmation = "Awaiting Confirmation"
	PaymentStatusPaid                 = "Paid"
	PaymentStatusRefunded             = "Refunded"
)

const PaymentMethodCashOnDelivery = "Cash on Delivery"

// PaymentStatusFor returns the initial payment status for a checkout paid with method.
func PaymentStatusFor(method string) string {
	if method == PaymentMethodCashOnDelivery {
		return PaymentStatusPending
	}
	return PaymentStatusAwaitingConfirmation
}

// IsCancellable reports whether a customer may still cancel an order in status.
func IsCancellable(status string) bool {
	return status == OrderStatusPending || status == OrderStatusToShip
}
