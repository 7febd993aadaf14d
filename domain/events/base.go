package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that has already happened and that other systems
// may want to react to.
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func newBaseEvent(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypeProfessionalViewed = "professional.viewed"
	TypeNetworkGraphBuilt  = "network.graph_built"
)

// ProfessionalViewed is raised when a professional's detail record is served.
type ProfessionalViewed struct {
	BaseEvent
	ProfessionalID string `json:"professional_id"`
	Name           string `json:"name"`
}

// NewProfessionalViewed creates a ProfessionalViewed event
func NewProfessionalViewed(professionalID, name string, timestamp time.Time) ProfessionalViewed {
	return ProfessionalViewed{
		BaseEvent:      newBaseEvent(professionalID, TypeProfessionalViewed, timestamp),
		ProfessionalID: professionalID,
		Name:           name,
	}
}

// NetworkGraphBuilt is raised each time a network graph is built around a
// professional.
type NetworkGraphBuilt struct {
	BaseEvent
	CenterID      string `json:"center_id"`
	NodeCount     int    `json:"node_count"`
	EdgeCount     int    `json:"edge_count"`
	InterestCount int    `json:"interest_count"`
}

// NewNetworkGraphBuilt creates a NetworkGraphBuilt event
func NewNetworkGraphBuilt(centerID string, nodes, edges, interests int, timestamp time.Time) NetworkGraphBuilt {
	return NetworkGraphBuilt{
		BaseEvent:     newBaseEvent(centerID, TypeNetworkGraphBuilt, timestamp),
		CenterID:      centerID,
		NodeCount:     nodes,
		EdgeCount:     edges,
		InterestCount: interests,
	}
}
