package queries

import (
	"strings"

	"profnet/domain/core/entities"
	pkgerrors "profnet/pkg/errors"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 200
)

// ListProfessionalsQuery pages through the directory in store order.
type ListProfessionalsQuery struct {
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

// Validate validates the query
func (q ListProfessionalsQuery) Validate() error {
	if q.Limit < 0 || q.Limit > MaxPageLimit {
		return pkgerrors.NewValidationError("limit must be between 0 and 200")
	}
	if q.Skip < 0 {
		return pkgerrors.NewValidationError("skip cannot be negative")
	}
	return nil
}

// PageLimit returns the limit with the default applied.
func (q ListProfessionalsQuery) PageLimit() int {
	if q.Limit == 0 {
		return DefaultPageLimit
	}
	return q.Limit
}

// GetProfessionalQuery fetches one record.
type GetProfessionalQuery struct {
	ID string `json:"id"`
}

// Validate validates the query
func (q GetProfessionalQuery) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return pkgerrors.NewValidationError("id is required")
	}
	return nil
}

// SearchProfessionalsQuery is a case-insensitive substring search.
type SearchProfessionalsQuery struct {
	Q     string `json:"q"`
	Limit int    `json:"limit"`
}

// Validate validates the query
func (q SearchProfessionalsQuery) Validate() error {
	if q.Limit < 0 || q.Limit > MaxPageLimit {
		return pkgerrors.NewValidationError("limit must be between 0 and 200")
	}
	return nil
}

// PageLimit returns the limit with the default applied.
func (q SearchProfessionalsQuery) PageLimit() int {
	if q.Limit == 0 {
		return DefaultPageLimit
	}
	return q.Limit
}

// ProfessionalsResult is a page of records.
type ProfessionalsResult struct {
	Professionals []*entities.Professional
}
