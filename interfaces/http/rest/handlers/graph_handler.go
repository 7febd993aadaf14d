package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"profnet/application/queries"
	querybus "profnet/application/queries/bus"
	pkgerrors "profnet/pkg/errors"
)

// GraphHandler serves built network graphs for clients that lay them out
// themselves.
type GraphHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *querybus.QueryBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		queryBus: queryBus,
		errors:   errs,
		logger:   logger,
	}
}

// GetGraph handles GET /api/graph/{id}?roster
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	roster, err := intParam(r, "roster")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := querybus.Ask[*queries.NetworkGraphResult](r.Context(), h.queryBus, queries.GetNetworkGraphQuery{
		CenterID:   chi.URLParam(r, "id"),
		RosterSize: roster,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}
