package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"profnet/application/queries"
	querybus "profnet/application/queries/bus"
	"profnet/domain/core/entities"
	pkgerrors "profnet/pkg/errors"
)

// ProfessionalHandler serves the directory listing, search and detail
// endpoints. Lists are returned as bare JSON arrays.
type ProfessionalHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewProfessionalHandler creates a new professional handler
func NewProfessionalHandler(queryBus *querybus.QueryBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *ProfessionalHandler {
	return &ProfessionalHandler{
		queryBus: queryBus,
		errors:   errs,
		logger:   logger,
	}
}

// List handles GET /api/professionals?limit&skip
func (h *ProfessionalHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	skip, err := intParam(r, "skip")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := querybus.Ask[*queries.ProfessionalsResult](r.Context(), h.queryBus, queries.ListProfessionalsQuery{
		Limit: limit,
		Skip:  skip,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result.Professionals)
}

// Search handles GET /api/professionals/search?q&limit
func (h *ProfessionalHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := querybus.Ask[*queries.ProfessionalsResult](r.Context(), h.queryBus, queries.SearchProfessionalsQuery{
		Q:     r.URL.Query().Get("q"),
		Limit: limit,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result.Professionals)
}

// Get handles GET /api/professionals/{id}
func (h *ProfessionalHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := querybus.Ask[*entities.Professional](r.Context(), h.queryBus, queries.GetProfessionalQuery{
		ID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, p)
}
