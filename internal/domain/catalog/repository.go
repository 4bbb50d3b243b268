package catalog

import "context"

type Repository interface {
	// ListActive returns active services; a nil shoe type means every type.
	ListActive(ctx context.Context, shoeType *ShoeType) ([]Service, error)
	// FindByIDs returns the services found among ids, keyed by id. Missing ids are simply absent.
	FindByIDs(ctx context.Context, ids []string) (map[string]Service, error)
	// Upsert inserts or updates a service matched by (name, shoe type).
	Upsert(ctx context.Context, s *Service) error
	// DeactivateExcept marks every service whose id is not in keep as inactive.
	DeactivateExcept(ctx context.Context, keep []string) error
}
