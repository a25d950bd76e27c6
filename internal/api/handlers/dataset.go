package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/dataset"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// DatasetHandler serves raw CVM rows by fund
type DatasetHandler struct {
	lookup *dataset.Lookup
	logger *logger.Logger
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(lookup *dataset.Lookup, log *logger.Logger) *DatasetHandler {
	return &DatasetHandler{lookup: lookup, logger: log}
}

// DatasetResponse wraps the rows of one fund
type DatasetResponse struct {
	Kind  contracts.DatasetKind `json:"kind"`
	CNPJ  string                `json:"cnpj"`
	Count int                   `json:"count"`
	Rows  []contracts.Row       `json:"rows"`
}

// GetByCNPJ returns the rows of one fund in one table
// GET /api/datasets/{kind}/{cnpj}
func (h *DatasetHandler) GetByCNPJ(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := contracts.DatasetKind(vars["kind"])
	cnpj := vars["cnpj"]

	rows, err := h.lookup.Find(r.Context(), kind, cnpj)
	switch {
	case err == nil:
	case errors.Is(err, dataset.ErrUnknownKind):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, dataset.ErrNotFound):
		respondError(w, http.StatusNotFound, "CNPJ não encontrado")
		return
	default:
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"kind": kind,
			"cnpj": cnpj,
		}).Error("Failed to look up dataset rows")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve dataset rows")
		return
	}

	respondJSON(w, http.StatusOK, DatasetResponse{
		Kind:  kind,
		CNPJ:  cnpj,
		Count: len(rows),
		Rows:  rows,
	})
}
