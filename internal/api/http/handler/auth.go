package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/service"
)

// Auth exposes the authentication endpoints.
type Auth struct {
	auth   *service.Auth
	logger *logger.Logger
}

func NewAuth(auth *service.Auth, logger *logger.Logger) *Auth {
	return &Auth{auth: auth, logger: logger}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

type updatePasswordRequest struct {
	RecoveryToken string `json:"recovery_token"`
	NewPassword   string `json:"new_password"`
}

func (h *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, tokens, err := h.auth.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, tokens, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.SignOut(r.Context(), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	access, refresh, err := h.auth.TokenService().Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

// Recover issues a recovery token for the given email. An unknown email is
// answered with the same 202 as a known one, so the endpoint cannot reveal
// which addresses have accounts.
func (h *Auth) Recover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.auth.RequestRecovery(r.Context(), req.Email)
	if err != nil {
		h.logger.Info("auth handler: recovery request not fulfilled", "error", err.Error())
	} else {
		// Email delivery is not wired up. The token is surfaced in debug
		// logs so the flow can be completed against development and staging
		// environments.
		h.logger.Debug("auth handler: recovery token issued", "email", req.Email, "token", token)
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *Auth) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.UpdatePassword(r.Context(), req.RecoveryToken, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
