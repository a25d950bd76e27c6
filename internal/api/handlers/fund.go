package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/fii-advisor/backend/internal/assistant"
	"github.com/wonny/fii-advisor/backend/internal/insights"
	"github.com/wonny/fii-advisor/backend/internal/reports"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// FundHandler serves insights, fund profiles and LLM analyses
type FundHandler struct {
	insights   *insights.Service
	assistant  *assistant.Assistant
	reportsDir string
	logger     *logger.Logger
}

// NewFundHandler creates a new fund handler
func NewFundHandler(svc *insights.Service, asst *assistant.Assistant, reportsDir string, log *logger.Logger) *FundHandler {
	return &FundHandler{
		insights:   svc,
		assistant:  asst,
		reportsDir: reportsDir,
		logger:     log,
	}
}

// GetSegments lists the selectable segments
// GET /api/segments
func (h *FundHandler) GetSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := h.insights.Segments(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list segments")
		respondError(w, http.StatusInternalServerError, "Failed to list segments")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(segments),
		"segments": segments,
	})
}

// GetInsights returns the yearly overview
// GET /api/insights/{year}
func (h *FundHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil || year < 2000 {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}

	report, err := h.insights.Report(r.Context(), year)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, report)
	case errors.Is(err, insights.ErrNoData):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.WithError(err).WithField("year", year).Error("Failed to build insights")
		respondError(w, http.StatusInternalServerError, "Failed to build insights")
	}
}

// GetFund returns the latest profile of a listed fund
// GET /api/funds/{ticker}
func (h *FundHandler) GetFund(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// AnalyzeFund asks the assistant for a written analysis
// POST /api/funds/{ticker}/analysis
func (h *FundHandler) AnalyzeFund(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	analysis, err := h.assistant.AnalyzeFund(r.Context(), *profile)
	if err != nil {
		respondAssistantError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":   profile.Ticker,
		"profile":  profile,
		"analysis": analysis,
	})
}

// SummarizeReport summarizes the newest management report PDF of a fund
// POST /api/funds/{ticker}/report-summary
func (h *FundHandler) SummarizeReport(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	files, err := reports.Find(h.reportsDir, ticker)
	if err != nil || len(files) == 0 {
		respondError(w, http.StatusNotFound, "no report found for "+ticker)
		return
	}
	latest := files[len(files)-1]

	summary, err := h.assistant.SummarizeReport(r.Context(), ticker, latest)
	if err != nil {
		respondAssistantError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"report":  latest,
		"summary": summary,
	})
}

func (h *FundHandler) profile(w http.ResponseWriter, r *http.Request) (*insights.FundProfile, bool) {
	ticker := mux.Vars(r)["ticker"]

	profile, err := h.insights.FundProfile(r.Context(), ticker)
	switch {
	case err == nil:
		return profile, true
	case errors.Is(err, insights.ErrFundNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load fund profile")
		respondError(w, http.StatusInternalServerError, "Failed to load fund profile")
	}
	return nil, false
}

func respondAssistantError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, assistant.ErrProviderDisabled):
		respondError(w, http.StatusServiceUnavailable, "assistant is not configured")
	case errors.Is(err, assistant.ErrEmptyMessage):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Warn("Assistant request failed")
		respondError(w, http.StatusBadGateway, "Erro ao gerar resposta")
	}
}
