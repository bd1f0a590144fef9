package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/slofy/reviewmate/internal/model"
	"github.com/slofy/reviewmate/internal/upstream"
)

type reviewOrchestrator interface {
	Review(ctx context.Context, req model.ReviewRequest) (*upstream.Result, error)
}

type ReviewHandler struct {
	orchestrator reviewOrchestrator
}

func NewReviewHandler(orchestrator reviewOrchestrator) *ReviewHandler {
	return &ReviewHandler{orchestrator: orchestrator}
}

// Review validates the payload, forwards it to the inference service and
// relays the upstream status and body verbatim.
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req model.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.orchestrator.Review(r.Context(), req)
	if err != nil {
		if errors.Is(err, upstream.ErrUnavailable) {
			log.Error().Err(err).Msg("review upstream unavailable")
			writeError(w, http.StatusBadGateway, "LLM service unreachable")
			return
		}
		log.Error().Err(err).Msg("review failed")
		writeError(w, http.StatusInternalServerError, "Review failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	w.Write(res.Body)
}
