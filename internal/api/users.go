package api

import (
	"net/http"

	"go.uber.org/zap"

	"pharmadesk/m/domain"
)

// listCustomers feeds the sale screen's customer picker.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) updateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req roleRequest
	if !h.decode(w, r, &req) {
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store.UpdateUserRole(r.Context(), id, role); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("user role changed", zap.Int64("user_id", id), zap.String("role", string(role)))
	respondMessage(w, http.StatusOK, "role updated")
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req activeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if claims, ok := claimsFrom(r.Context()); ok && claims.UserID == id && !*req.Active {
		respondError(w, http.StatusBadRequest, "you cannot deactivate your own account")
		return
	}
	if err := h.store.SetUserActive(r.Context(), id, *req.Active); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("user active flag changed", zap.Int64("user_id", id), zap.Bool("active", *req.Active))
	respondMessage(w, http.StatusOK, "user updated")
}

func (h *Handler) protected(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "You are authorized!")
}

func (h *Handler) adminData(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "This is admin data")
}

func (h *Handler) managerData(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "This is manager data")
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "Authorized")
}
