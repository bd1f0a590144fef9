package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/slofy/reviewmate/internal/model"
	"github.com/slofy/reviewmate/internal/service"
)

type signupOrchestrator interface {
	Signup(ctx context.Context, name, email, password string) (*model.Account, string, error)
	Login(ctx context.Context, email, password string) (*model.Account, string, error)
}

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Account, error)
}

type AuthHandler struct {
	orchestrator signupOrchestrator
	auth         authenticator
}

func NewAuthHandler(orchestrator signupOrchestrator, auth authenticator) *AuthHandler {
	return &AuthHandler{orchestrator: orchestrator, auth: auth}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *model.Account `json:"user"`
	Token string         `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	account, token, err := h.orchestrator.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("signup failed")
		writeError(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: account, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing email or password")
		return
	}

	account, token, err := h.orchestrator.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: account, Token: token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}

	account, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		log.Error().Err(err).Msg("token lookup failed")
		writeError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": account})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}
