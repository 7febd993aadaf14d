package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"profnet/application/queries"
	querybus "profnet/application/queries/bus"
	pkgerrors "profnet/pkg/errors"
	"profnet/pkg/utils"
)

// InsightHandler serves the AI analysis, recommendation and question
// endpoints. Model failures still answer 200 with fallback text and
// degraded set.
type InsightHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(queryBus *querybus.QueryBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{
		queryBus: queryBus,
		errors:   errs,
		logger:   logger,
	}
}

// QuestionRequest is the body of POST /api/ai/question.
type QuestionRequest struct {
	Question string `json:"question" validate:"max=2000"`
}

// Analyze handles GET /api/ai/analyze/{id}
func (h *InsightHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, "analysis", queries.AnalyzeProfessionalQuery{ID: chi.URLParam(r, "id")})
}

// Recommend handles GET /api/ai/recommend/{id}
func (h *InsightHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, "recommendations", queries.RecommendCollaboratorsQuery{ID: chi.URLParam(r, "id")})
}

// Question handles POST /api/ai/question
func (h *InsightHandler) Question(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, "answer", queries.AnswerQuestionQuery{Question: req.Question})
}

// ask runs query and writes its text under key, next to the rendered HTML.
func (h *InsightHandler) ask(w http.ResponseWriter, r *http.Request, key string, query querybus.Query) {
	result, err := querybus.Ask[*queries.InsightResult](r.Context(), h.queryBus, query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if result.Degraded {
		h.logger.Warn("Serving degraded insight", zap.String("kind", key))
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		key:        result.Text,
		"html":     result.HTML,
		"degraded": result.Degraded,
	})
}
