package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/egannguyen/go-commerce-api/internal/service"
)

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in service.PlaceOrderInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.svc.Orders.PlaceOrder(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Orders.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Orders.CancelOrder(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Successfully updated.")
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.Orders.OrderHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
