package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/safar/furnishop/internal/checkout"
	"github.com/shopspring/decimal"
)

// checkoutRequest accepts both spellings the web client has used for the
// item list and the total.
type checkoutRequest struct {
	CartItems     []json.RawMessage `json:"cartItems"`
	Items         []json.RawMessage `json:"items"`
	PaymentMethod string            `json:"payment_method"`
	TotalAmount   *decimal.Decimal  `json:"total_amount"`
	Total         *decimal.Decimal  `json:"total"`
}

type directOrderRequest struct {
	PaymentMethod string           `json:"payment_method"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	Quantity      int              `json:"quantity"`
	OrderPrice    *decimal.Decimal `json:"order_price"`
}

type orderPlacedResponse struct {
	Message string `json:"message"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *Handler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := req.CartItems
	if len(items) == 0 {
		items = req.Items
	}
	total := req.TotalAmount
	if total == nil {
		total = req.Total
	}

	result, err := h.Checkout.Checkout(r.Context(), checkout.CartCheckout{
		CustomerID:    caller(r).ID,
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   total,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, orderPlacedResponse{
		Message: "Order placed successfully",
		OrderID: result.ShortID(),
		Status:  result.Order.Status,
	})
}

func (h *Handler) PlaceDirectOrder(w http.ResponseWriter, r *http.Request) {
	var req directOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.Checkout.PlaceDirectOrder(r.Context(), checkout.DirectOrder{
		CustomerID:    caller(r).ID,
		ProductID:     mux.Vars(r)["id"],
		PaymentMethod: req.PaymentMethod,
		Quantity:      req.Quantity,
		OrderPrice:    req.OrderPrice,
		TotalAmount:   req.TotalAmount,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, orderPlacedResponse{
		Message: "Order placed successfully",
		OrderID: result.ShortID(),
		Status:  result.Order.Status,
	})
}
