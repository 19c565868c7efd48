package api

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/auth"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"`
	FullName string `json:"fullName" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Phone    string `json:"phone" validate:"max=20"`
}

type registerResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondError(w, http.StatusBadRequest, "username is required")
		return
	}

	role := domain.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		role = parsed
	}
	if role == domain.RoleAdmin {
		respondError(w, http.StatusForbidden, "admin accounts cannot be self-registered")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user := domain.User{
		FullName:     strings.TrimSpace(req.FullName),
		Username:     req.Username,
		PasswordHash: hashed,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		IsActive:     true,
	}
	if err := h.store.CreateUser(r.Context(), &user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			respondError(w, http.StatusConflict, "username already exists")
			return
		}
		h.fail(w, r, err)
		return
	}

	h.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	respondJSON(w, http.StatusCreated, registerResponse{Message: "User registered successfully", User: user})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.store.UserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, domain.ErrNotFound) {
		auth.BurnPasswordCheck(req.Password)
		h.metrics.Login("invalid_credentials")
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if auth.CheckPassword(user.PasswordHash, req.Password) != nil {
		h.metrics.Login("invalid_credentials")
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.IsActive {
		h.metrics.Login("disabled")
		respondError(w, http.StatusForbidden, "account is disabled")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.Login("success")
	h.log.Info("login succeeded", zap.Int64("user_id", user.ID))
	respondJSON(w, http.StatusOK, loginResponse{Token: token})
}
