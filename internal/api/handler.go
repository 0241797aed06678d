// Package api exposes the store over a JSON REST interface.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/safar/furnishop/internal/auth"
	"github.com/safar/furnishop/internal/cart"
	"github.com/safar/furnishop/internal/catalog"
	"github.com/safar/furnishop/internal/checkout"
	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/orders"
	"github.com/safar/furnishop/internal/reviews"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Accounts *auth.Accounts
	Gate     *auth.Gate
	Catalog  *catalog.Service
	Cart     *cart.Service
	Checkout *checkout.Service
	Orders   *orders.Service
	Reviews  *reviews.Service
}

type Handler struct {
	Deps
}

func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

// NewRouter builds the full route table with request logging.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverPanics, logRequests)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	// Catalog
	api.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	api.Handle("/products", h.admin(h.CreateProduct)).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}/reviews", h.ListReviews).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/product-types", h.ListProductTypes).Methods(http.MethodGet)

	// Cart
	api.Handle("/cart", h.authed(h.GetCart)).Methods(http.MethodGet)
	api.Handle("/cart/items", h.authed(h.AddCartItem)).Methods(http.MethodPost)
	api.Handle("/cart/items/{productId}", h.authed(h.RemoveCartItem)).Methods(http.MethodDelete)

	// Checkout
	api.Handle("/checkout", h.authed(h.CheckoutCart)).Methods(http.MethodPost)
	api.Handle("/products/{id}/order", h.authed(h.PlaceDirectOrder)).Methods(http.MethodPost)

	// Orders
	api.Handle("/orders", h.authed(h.ListOrders)).Methods(http.MethodGet)
	api.Handle("/orders/{id}", h.authed(h.GetOrder)).Methods(http.MethodGet)
	api.Handle("/orders/{id}/cancel", h.authed(h.CancelOrder)).Methods(http.MethodPut)
	api.Handle("/orders/{id}/toggle-lock", h.admin(h.ToggleOrderLock)).Methods(http.MethodPut)
	api.Handle("/orders/{id}/status", h.admin(h.SetOrderStatus)).Methods(http.MethodPut)

	// Reviews
	api.Handle("/reviews", h.authed(h.SubmitReview)).Methods(http.MethodPost)
}

func (h *Handler) authed(fn http.HandlerFunc) http.Handler {
	return h.Gate.RequireAuth(fn)
}

func (h *Handler) admin(fn http.HandlerFunc) http.Handler {
	return h.Gate.RequireAuth(auth.RequireAdmin(fn))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// caller is only called behind RequireAuth.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("encode JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps service errors onto HTTP statuses.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrInvalidInput),
		errors.Is(err, database.ErrInsufficientStock),
		errors.Is(err, database.ErrNotCancellable):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, database.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, database.ErrCustomerNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrCartItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
