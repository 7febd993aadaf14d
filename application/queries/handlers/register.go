package handlers

import (
	"profnet/application/queries"
	"profnet/application/queries/bus"
)

// Set groups the handlers of every query the service answers.
type Set struct {
	Professionals *ProfessionalHandlers
	Network       *GetNetworkGraphHandler
	Insights      *InsightHandlers
}

// Register wires set onto qb. Every query is measured when metrics is set;
// AI queries are also cached for cacheTTL seconds when cache is set.
func Register(qb *bus.QueryBus, set Set, cache bus.Cache, cacheTTL int, metrics bus.Metrics) error {
	var common []bus.Middleware
	if metrics != nil {
		common = append(common, bus.NewMetricsMiddleware(metrics))
	}
	cached := common
	if cache != nil && cacheTTL > 0 {
		cached = append(append([]bus.Middleware{}, common...), bus.NewCachingMiddleware(cache, cacheTTL))
	}

	registrations := []struct {
		query       bus.Query
		handler     bus.QueryHandler
		middlewares []bus.Middleware
	}{
		{queries.ListProfessionalsQuery{}, bus.Typed(set.Professionals.List), common},
		{queries.SearchProfessionalsQuery{}, bus.Typed(set.Professionals.Search), common},
		{queries.GetProfessionalQuery{}, bus.Typed(set.Professionals.Get), common},
		{queries.GetNetworkGraphQuery{}, bus.Typed(set.Network.Handle), common},
		{queries.AnalyzeProfessionalQuery{}, bus.Typed(set.Insights.Analyze), cached},
		{queries.RecommendCollaboratorsQuery{}, bus.Typed(set.Insights.Recommend), cached},
		{queries.AnswerQuestionQuery{}, bus.Typed(set.Insights.Answer), cached},
	}
	for _, reg := range registrations {
		if err := qb.Register(reg.query, reg.handler, reg.middlewares...); err != nil {
			return err
		}
	}
	return nil
}
