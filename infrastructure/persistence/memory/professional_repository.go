// Package memory is an in-process ProfessionalRepository for local runs and
// tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"profnet/application/ports"
	"profnet/domain/core/entities"
	pkgerrors "profnet/pkg/errors"
)

// ProfessionalRepository keeps records in insertion order.
type ProfessionalRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*entities.Professional
}

var _ ports.ProfessionalRepository = (*ProfessionalRepository)(nil)

// NewProfessionalRepository creates a repository holding seed.
func NewProfessionalRepository(seed ...*entities.Professional) (*ProfessionalRepository, error) {
	r := &ProfessionalRepository{byID: make(map[string]*entities.Professional)}
	for _, p := range seed {
		if err := r.Save(context.Background(), p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadFile reads a JSON array of records, as exported from the directory.
func LoadFile(path string) ([]*entities.Professional, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var list []*entities.Professional
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return list, nil
}

func (r *ProfessionalRepository) List(ctx context.Context, limit, skip int) ([]*entities.Professional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if skip >= len(r.order) {
		return []*entities.Professional{}, nil
	}
	end := len(r.order)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return r.collect(r.order[skip:end]), nil
}

func (r *ProfessionalRepository) All(ctx context.Context) ([]*entities.Professional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.order), nil
}

func (r *ProfessionalRepository) GetByID(ctx context.Context, id string) (*entities.Professional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.NewProfessionalNotFoundError(id)
	}
	return clone(p), nil
}

func (r *ProfessionalRepository) Search(ctx context.Context, q string, limit int) ([]*entities.Professional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*entities.Professional{}
	for _, id := range r.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		if p := r.byID[id]; p.Matches(q) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *ProfessionalRepository) Save(ctx context.Context, p *entities.Professional) error {
	if p == nil {
		return pkgerrors.NewValidationError("professional cannot be nil")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = clone(p)
	return nil
}

func (r *ProfessionalRepository) collect(ids []string) []*entities.Professional {
	out := make([]*entities.Professional, len(ids))
	for i, id := range ids {
		out[i] = clone(r.byID[id])
	}
	return out
}

// clone copies a record so callers cannot mutate stored state.
func clone(p *entities.Professional) *entities.Professional {
	c := *p
	c.AcademicInfo.ResearchInterests = append([]string(nil), p.AcademicInfo.ResearchInterests...)
	c.AcademicInfo.Achievements = append([]string(nil), p.AcademicInfo.Achievements...)
	return &c
}
