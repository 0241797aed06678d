package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/safar/furnishop/internal/reviews"
	"github.com/safar/furnishop/internal/store"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Dimensions    string          `json:"dimensions"`
	CategoryID    string          `json:"category_id"`
	ProductTypeID string          `json:"product_type_id"`
	Images        []string        `json:"images"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.Catalog.ListProducts(r.Context(),
		r.URL.Query().Get("category_id"), queryInt(r, "page"), queryInt(r, "page_size"))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.Catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.Catalog.CreateProduct(r.Context(), store.CreateProductParams{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Dimensions:    req.Dimensions,
		CategoryID:    req.CategoryID,
		ProductTypeID: req.ProductTypeID,
		ImageURLs:     req.Images,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.Categories(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) ListProductTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Catalog.ProductTypes(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, types)
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	list, err := h.Reviews.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.Reviews.Submit(r.Context(), reviews.Submission{
		CustomerID: caller(r).ID,
		ProductID:  req.ProductID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, review)
}
