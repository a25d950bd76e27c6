package handlers

import (
	"errors"
	"net/http"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/locale"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// RecommendationHandler serves recommendation runs
// ⭐ SSOT: 추천 API 핸들러는 이 구조체에서만
type RecommendationHandler struct {
	recommender contracts.Recommender
	logger      *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommender contracts.Recommender, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{recommender: recommender, logger: log}
}

// Recommend runs the pipeline for the posted request
// POST /api/recommendations
//
//	{"profile":"conservative","recency":"monthly","segments":["Logística"],"price_band":"low","count":5}
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req contracts.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.recommender.Recommend(r.Context(), req)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, result)
	case errors.Is(err, contracts.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, locale.ErrIngestion):
		h.logger.WithError(err).Error("Recommendation aborted by ingestion error")
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.WithError(err).Error("Recommendation failed")
		respondError(w, http.StatusInternalServerError, "Failed to compute recommendations")
	}
}
