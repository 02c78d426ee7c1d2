package http

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/service"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.svc.Auth.Login(r.Context(), in)
	var an *apperr.AuthenticationError
	if errors.As(err, &an) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Auth.Logout(r.Context(), actor(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.svc.Users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in service.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.svc.Users.UpdateProfile(r.Context(), actor(r), in)
	var an *apperr.AuthenticationError
	if errors.As(err, &an) {
		writeMessage(w, http.StatusUnauthorized, "The current password is incorrect.")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated successfully")
}
