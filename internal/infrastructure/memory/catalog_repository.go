package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	domain "github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
)

type CatalogRepository struct {
	mu       sync.RWMutex
	services map[string]domain.Service
}

// NewCatalogRepository returns a repository preloaded with services.
func NewCatalogRepository(services ...domain.Service) *CatalogRepository {
	r := &CatalogRepository{services: make(map[string]domain.Service, len(services))}
	for _, s := range services {
		r.services[s.ID] = s
	}
	return r
}

func (r *CatalogRepository) ListActive(ctx context.Context, shoeType *domain.ShoeType) ([]domain.Service, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Service, 0, len(r.services))
	for _, s := range r.services {
		if !s.Active {
			continue
		}
		if shoeType != nil && s.ShoeType != *shoeType {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *CatalogRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Service, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.Service, len(ids))
	for _, id := range ids {
		if s, ok := r.services[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (r *CatalogRepository) Upsert(ctx context.Context, s *domain.Service) error {
	_ = ctx
	if s == nil {
		return fmt.Errorf("catalog repository: service is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.services {
		if existing.Name == s.Name && existing.ShoeType == s.ShoeType {
			s.ID = id
			s.CreatedAt = existing.CreatedAt
			r.services[id] = *s
			return nil
		}
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.services[s.ID] = *s
	return nil
}

func (r *CatalogRepository) DeactivateExcept(ctx context.Context, keep []string) error {
	_ = ctx
	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.services {
		if _, ok := kept[id]; ok {
			continue
		}
		s.Active = false
		r.services[id] = s
	}
	return nil
}
