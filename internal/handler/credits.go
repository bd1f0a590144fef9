package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/slofy/reviewmate/internal/repository"
	"github.com/slofy/reviewmate/internal/service"
)

type creditLedger interface {
	Balance(ctx context.Context, email string) (int, error)
	Deduct(ctx context.Context, email string, amount int) (int, error)
	Add(ctx context.Context, email string, amount int) (int, error)
}

type CreditsHandler struct {
	credits creditLedger
}

func NewCreditsHandler(credits creditLedger) *CreditsHandler {
	return &CreditsHandler{credits: credits}
}

type creditMutation struct {
	Email  string `json:"email"`
	Amount int    `json:"amount"`
}

func (h *CreditsHandler) Get(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Missing email")
		return
	}

	credits, err := h.credits.Balance(r.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("email", email).Msg("failed to fetch credits")
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"email": email, "credits": credits})
}

func (h *CreditsHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMutation(w, r)
	if !ok {
		return
	}

	newCredits, err := h.credits.Deduct(r.Context(), req.Email, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientCredits):
			writeError(w, http.StatusBadRequest, "Insufficient credits")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "Amount must be positive")
		default:
			log.Error().Err(err).Str("email", req.Email).Int("amount", req.Amount).Msg("deduct failed")
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"email": req.Email, "newCredits": newCredits})
}

func (h *CreditsHandler) Add(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMutation(w, r)
	if !ok {
		return
	}

	newCredits, err := h.credits.Add(r.Context(), req.Email, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "Amount must be positive")
		default:
			log.Error().Err(err).Str("email", req.Email).Int("amount", req.Amount).Msg("add failed")
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"email": req.Email, "newCredits": newCredits})
}

func decodeMutation(w http.ResponseWriter, r *http.Request) (creditMutation, bool) {
	var req creditMutation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return req, false
	}
	if req.Email == "" || req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "Missing email or amount")
		return req, false
	}
	return req, true
}
