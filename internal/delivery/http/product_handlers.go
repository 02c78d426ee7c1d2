package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/egannguyen/go-commerce-api/internal/service"
)

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeFormError(w, r, err)
		return
	}

	product, err := h.svc.Products.Create(r.Context(), in)
	if err != nil {
		writeFormError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.Products.List(r.Context(), service.ProductQuery{
		Description: q.Get("description"),
		Price:       q.Get("price"),
		PageQuery:   pageQuery(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.Products.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var patch service.ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Products.Update(r.Context(), mux.Vars(r)["id"], patch); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Updated product!")
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Products.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Successfully deleted product!")
}
