package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := h.Orders.List(r.Context(), caller(r), r.URL.Query().Get("cursor"), queryInt(r, "limit"))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), caller(r), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Cancel(r.Context(), caller(r), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order cancelled",
		"order":   order,
	})
}

func (h *Handler) ToggleOrderLock(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.ToggleLock(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.Orders.SetStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}
