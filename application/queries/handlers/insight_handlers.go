package handlers

import (
	"context"

	"profnet/application/ports"
	"profnet/application/queries"
	"profnet/application/services"
	"profnet/domain/core/entities"
)

// Insights is the AI text generation the handlers rely on.
type Insights interface {
	Analyze(ctx context.Context, p *entities.Professional) (string, error)
	Recommend(ctx context.Context, p *entities.Professional, pool []*entities.Professional) (string, error)
	Answer(ctx context.Context, question string) (string, error)
}

// Formatter renders generated markdown to HTML.
type Formatter interface {
	ToHTML(text string) string
}

// InsightHandlers serves the AI queries. Generation failures are not errors:
// they produce a degraded result with fallback text.
type InsightHandlers struct {
	repo      ports.ProfessionalRepository
	insights  Insights
	formatter Formatter
}

// NewInsightHandlers creates the AI query handlers
func NewInsightHandlers(repo ports.ProfessionalRepository, insights Insights, formatter Formatter) *InsightHandlers {
	return &InsightHandlers{
		repo:      repo,
		insights:  insights,
		formatter: formatter,
	}
}

// Analyze handles AnalyzeProfessionalQuery.
func (h *InsightHandlers) Analyze(ctx context.Context, q queries.AnalyzeProfessionalQuery) (*queries.InsightResult, error) {
	p, err := h.repo.GetByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	return h.result(h.insights.Analyze(ctx, p)), nil
}

// Recommend handles RecommendCollaboratorsQuery.
func (h *InsightHandlers) Recommend(ctx context.Context, q queries.RecommendCollaboratorsQuery) (*queries.InsightResult, error) {
	p, err := h.repo.GetByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	pool, err := h.repo.List(ctx, services.RecommendationPoolSize, 0)
	if err != nil {
		return nil, err
	}
	return h.result(h.insights.Recommend(ctx, p, pool)), nil
}

// Answer handles AnswerQuestionQuery.
func (h *InsightHandlers) Answer(ctx context.Context, q queries.AnswerQuestionQuery) (*queries.InsightResult, error) {
	return h.result(h.insights.Answer(ctx, q.Question)), nil
}

func (h *InsightHandlers) result(text string, err error) *queries.InsightResult {
	return &queries.InsightResult{
		Text:     text,
		HTML:     h.formatter.ToHTML(text),
		Degraded: err != nil,
	}
}
