package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"profnet/application/ports"
	"profnet/application/queries"
	"profnet/domain/events"
	"profnet/domain/layout"
	"profnet/domain/network"
)

// GetNetworkGraphHandler builds a professional's shared-interest graph.
type GetNetworkGraphHandler struct {
	repo      ports.ProfessionalRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewGetNetworkGraphHandler creates a new network graph handler
func NewGetNetworkGraphHandler(repo ports.ProfessionalRepository, publisher ports.EventPublisher, logger *zap.Logger) *GetNetworkGraphHandler {
	return &GetNetworkGraphHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the network graph query
func (h *GetNetworkGraphHandler) Handle(ctx context.Context, q queries.GetNetworkGraphQuery) (*queries.NetworkGraphResult, error) {
	center, err := h.repo.GetByID(ctx, q.CenterID)
	if err != nil {
		return nil, err
	}

	size := q.RosterSize
	if size == 0 {
		size = queries.DefaultRosterSize
	}
	roster, err := h.repo.List(ctx, size, 0)
	if err != nil {
		return nil, err
	}

	snap := network.Build(center, roster)
	stats := snap.Stats()

	result := &queries.NetworkGraphResult{
		Title:    layout.Title(snap),
		Isolated: snap.Isolated(),
		Graph:    snap,
		Stats:    stats,
		Styles:   make([]queries.NodeStyle, len(snap.Nodes)),
	}
	if result.Isolated {
		result.Message = layout.IsolatedMessage(center.Name())
	}
	for i, n := range snap.Nodes {
		result.Styles[i] = queries.NodeStyle{
			ID:      n.ID,
			Radius:  layout.Radius(n),
			Color:   layout.Color(n),
			Tooltip: layout.Tooltip(n),
		}
	}

	event := events.NewNetworkGraphBuilt(center.ID, stats.NodeCount, stats.EdgeCount, stats.InterestCount, time.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish graph event", zap.String("center", center.ID), zap.Error(err))
	}

	h.logger.Debug("network graph built",
		zap.String("center", center.ID),
		zap.Int("roster", len(roster)),
		zap.Int("nodes", stats.NodeCount),
		zap.Int("edges", stats.EdgeCount),
	)
	return result, nil
}
