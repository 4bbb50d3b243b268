package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

const serviceColumns = `id, name, price::text, shoe_type, active, description, image_filename, created_at`

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) ListActive(ctx context.Context, shoeType *catalog.ShoeType) ([]catalog.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE active`
	var args []any
	if shoeType != nil {
		query += ` AND shoe_type = $1`
		args = append(args, string(*shoeType))
	}
	query += ` ORDER BY shoe_type, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return collectServices(rows)
}

func (r *CatalogRepository) FindByIDs(ctx context.Context, ids []string) (map[string]catalog.Service, error) {
	out := make(map[string]catalog.Service, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog: find: %w", err)
	}
	services, err := collectServices(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range services {
		out[s.ID] = s
	}
	return out, nil
}

func (r *CatalogRepository) Upsert(ctx context.Context, s *catalog.Service) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (id, name, price, shoe_type, active, description, image_filename)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
		ON CONFLICT (name, shoe_type) DO UPDATE SET
			price = EXCLUDED.price,
			active = EXCLUDED.active,
			description = EXCLUDED.description,
			image_filename = EXCLUDED.image_filename
		RETURNING id, created_at`,
		s.ID, s.Name, s.Price.StringFixed(2), string(s.ShoeType), s.Active, s.Description, s.ImageFilename,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert %q: %w", s.Name, err)
	}
	return nil
}

func (r *CatalogRepository) DeactivateExcept(ctx context.Context, keep []string) error {
	if keep == nil {
		keep = []string{}
	}
	if _, err := r.pool.Exec(ctx, `UPDATE services SET active = FALSE WHERE active AND NOT (id = ANY($1))`, keep); err != nil {
		return fmt.Errorf("catalog: deactivate: %w", err)
	}
	return nil
}

func collectServices(rows pgx.Rows) ([]catalog.Service, error) {
	defer rows.Close()

	var out []catalog.Service
	for rows.Next() {
		var (
			s     catalog.Service
			price string
			shoe  string
		)
		if err := rows.Scan(&s.ID, &s.Name, &price, &shoe, &s.Active, &s.Description, &s.ImageFilename, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("catalog: price %q: %w", price, err)
		}
		s.Price = d
		s.ShoeType = catalog.ShoeType(shoe)
		out = append(out, s)
	}
	return out, rows.Err()
}
