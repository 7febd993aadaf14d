package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"profnet/application/ports"
	"profnet/application/queries"
	"profnet/domain/core/entities"
	"profnet/domain/events"
)

// ProfessionalHandlers serves the directory read queries.
type ProfessionalHandlers struct {
	repo      ports.ProfessionalRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewProfessionalHandlers creates the directory query handlers
func NewProfessionalHandlers(repo ports.ProfessionalRepository, publisher ports.EventPublisher, logger *zap.Logger) *ProfessionalHandlers {
	return &ProfessionalHandlers{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// List handles ListProfessionalsQuery.
func (h *ProfessionalHandlers) List(ctx context.Context, q queries.ListProfessionalsQuery) (*queries.ProfessionalsResult, error) {
	list, err := h.repo.List(ctx, q.PageLimit(), q.Skip)
	if err != nil {
		return nil, err
	}
	return &queries.ProfessionalsResult{Professionals: nonNil(list)}, nil
}

// Search handles SearchProfessionalsQuery. A blank query lists the directory.
func (h *ProfessionalHandlers) Search(ctx context.Context, q queries.SearchProfessionalsQuery) (*queries.ProfessionalsResult, error) {
	list, err := h.repo.Search(ctx, q.Q, q.PageLimit())
	if err != nil {
		return nil, err
	}
	h.logger.Debug("professionals searched", zap.String("q", q.Q), zap.Int("results", len(list)))
	return &queries.ProfessionalsResult{Professionals: nonNil(list)}, nil
}

// Get handles GetProfessionalQuery and records the view.
func (h *ProfessionalHandlers) Get(ctx context.Context, q queries.GetProfessionalQuery) (*entities.Professional, error) {
	p, err := h.repo.GetByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	if err := h.publisher.Publish(ctx, events.NewProfessionalViewed(p.ID, p.Name(), time.Now())); err != nil {
		h.logger.Warn("failed to publish view event", zap.String("id", p.ID), zap.Error(err))
	}
	return p, nil
}

func nonNil(list []*entities.Professional) []*entities.Professional {
	if list == nil {
		return []*entities.Professional{}
	}
	return list
}
