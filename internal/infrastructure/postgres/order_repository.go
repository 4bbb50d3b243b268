package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	domain "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create writes the order, its pairs and lines in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("order: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, name, email, phone, company, status, total, payment_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)`,
		o.ID, o.Customer.Name, o.Customer.Email, o.Customer.Phone, o.Customer.Company,
		string(o.Status), o.Total.StringFixed(2), o.PaymentRef, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("order: insert: %w", err)
	}

	for _, p := range o.Pairs {
		_, err = tx.Exec(ctx, `
			INSERT INTO pairs (id, order_id, shoe_type, photo_url, photo_path, description, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, o.ID, string(p.ShoeType), p.Photo.URL, p.Photo.Path, p.Description, p.Position, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("order: insert pair %d: %w", p.Position, err)
		}
		for seq, l := range p.Lines {
			_, err = tx.Exec(ctx, `
				INSERT INTO lines (id, pair_id, service_id, service_name, unit_price, seq, created_at)
				VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
				l.ID, p.ID, l.ServiceID, l.ServiceName, l.UnitPrice.StringFixed(2), seq+1, l.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("order: insert line: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("order: commit: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	return load(ctx, r.pool, id, false)
}

// Update locks the order row with SELECT ... FOR UPDATE for the duration of fn.
func (r *OrderRepository) Update(ctx context.Context, id string, fn domain.UpdateFunc) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("order: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := load(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	changed, err := fn(o)
	if err != nil {
		return o, err
	}
	if !changed {
		return o, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET status = $2, payment_ref = $3, checkout_session_id = $4, updated_at = $5
		WHERE id = $1`,
		o.ID, string(o.Status), o.PaymentRef, o.CheckoutSessionID, o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("order: update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("order: commit: %w", err)
	}
	return o, nil
}

func load(ctx context.Context, q querier, id string, forUpdate bool) (*domain.Order, error) {
	query := `SELECT id, name, email, phone, company, status, total::text, payment_ref, checkout_session_id,
		       created_at, updated_at
		FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		o      domain.Order
		status string
		total  string
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.Customer.Company,
		&status, &total, &o.PaymentRef, &o.CheckoutSessionID, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order: select: %w", err)
	}
	o.Status = domain.Status(status)
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order: total %q: %w", total, err)
	}

	if err := loadPairs(ctx, q, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func loadPairs(ctx context.Context, q querier, o *domain.Order) error {
	rows, err := q.Query(ctx, `
		SELECT p.id, p.shoe_type, p.photo_url, p.photo_path, p.description, p.position, p.created_at,
		       l.id, l.service_id, l.service_name, l.unit_price::text, l.created_at
		FROM pairs p
		JOIN lines l ON l.pair_id = p.id
		WHERE p.order_id = $1
		ORDER BY p.position, l.seq`, o.ID)
	if err != nil {
		return fmt.Errorf("order: select pairs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                        domain.Pair
			l                        domain.Line
			shoe, price              string
			pairCreated, lineCreated time.Time
		)
		if err := rows.Scan(
			&p.ID, &shoe, &p.Photo.URL, &p.Photo.Path, &p.Description, &p.Position, &pairCreated,
			&l.ID, &l.ServiceID, &l.ServiceName, &price, &lineCreated,
		); err != nil {
			return fmt.Errorf("order: scan pair: %w", err)
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("order: line price %q: %w", price, err)
		}
		l.PairID = p.ID
		l.CreatedAt = lineCreated

		if n := len(o.Pairs); n == 0 || o.Pairs[n-1].ID != p.ID {
			p.OrderID = o.ID
			p.ShoeType = catalog.ShoeType(shoe)
			p.CreatedAt = pairCreated
			o.Pairs = append(o.Pairs, p)
		}
		last := &o.Pairs[len(o.Pairs)-1]
		last.Lines = append(last.Lines, l)
	}
	return rows.Err()
}
