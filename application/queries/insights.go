package queries

import (
	"strings"

	pkgerrors "profnet/pkg/errors"
)

// AnalyzeProfessionalQuery asks for an AI write-up of one professional.
type AnalyzeProfessionalQuery struct {
	ID string `json:"id"`
}

// Validate validates the query
func (q AnalyzeProfessionalQuery) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return pkgerrors.NewValidationError("id is required")
	}
	return nil
}

// RecommendCollaboratorsQuery asks for AI collaborator suggestions.
type RecommendCollaboratorsQuery struct {
	ID string `json:"id"`
}

// Validate validates the query
func (q RecommendCollaboratorsQuery) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return pkgerrors.NewValidationError("id is required")
	}
	return nil
}

// AnswerQuestionQuery is a free-text question answered with directory context.
type AnswerQuestionQuery struct {
	Question string `json:"question"`
}

// Validate validates the query
func (q AnswerQuestionQuery) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return pkgerrors.NewValidationError("问题不能为空")
	}
	return nil
}

// CacheKey folds case and whitespace so trivially different phrasings share
// one cached answer.
func (q AnswerQuestionQuery) CacheKey() string {
	return strings.ToLower(strings.Join(strings.Fields(q.Question), " "))
}

// InsightResult is generated text. Degraded results carry a fallback message
// instead of model output and are never cached.
type InsightResult struct {
	Text     string `json:"text"`
	HTML     string `json:"html"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Cacheable implements bus.Cacheable.
func (r *InsightResult) Cacheable() bool {
	return !r.Degraded
}
