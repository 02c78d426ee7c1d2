package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/egannguyen/go-commerce-api/internal/service"
)

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var in service.ClientInput
	if err := decodeJSON(r, &in); err != nil {
		writeFormError(w, r, err)
		return
	}

	client, err := h.svc.Clients.Create(r.Context(), actor(r), in)
	if err != nil {
		writeFormError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.Clients.List(r.Context(), actor(r), service.ClientQuery{
		Name:      q.Get("name"),
		Email:     q.Get("email"),
		Phone:     q.Get("phone"),
		PageQuery: pageQuery(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.svc.Clients.Get(r.Context(), actor(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var in service.ClientInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Clients.Update(r.Context(), actor(r), mux.Vars(r)["id"], in); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Client updated successfully")
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clients.Delete(r.Context(), actor(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Client deleted successfully")
}

func (h *Handler) clientStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Clients.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
