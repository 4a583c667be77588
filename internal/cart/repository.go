package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

// Repository persists carts. FindByID returns (nil, nil) when the cart does
// not exist.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Cart, error) {
	var (
		s        Snapshot
		discount string
		tax      string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, COALESCE(discount::text, ''), COALESCE(tax::text, ''), created_at, updated_at
		FROM carts WHERE id = $1
	`, id).Scan(&s.ID, &s.OwnerID, &discount, &tax, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	if s.Discount, err = parseOptional(discount); err != nil {
		return nil, fmt.Errorf("cart %s discount: %w", id, err)
	}
	if s.Tax, err = parseOptional(tax); err != nil {
		return nil, fmt.Errorf("cart %s tax: %w", id, err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT product_id, name, unit_price::text, quantity, image
		FROM cart_items WHERE cart_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it    ItemSnapshot
			price string
		)
		if err := rows.Scan(&it.ProductID, &it.Name, &price, &it.Quantity, &it.Image); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		if it.UnitPrice, err = money.Parse(price); err != nil {
			return nil, fmt.Errorf("cart_item %s price: %w", it.ProductID, err)
		}
		s.Items = append(s.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return FromSnapshot(s)
}

func (r *PostgresRepository) Save(ctx context.Context, c *Cart) error {
	s := c.Snapshot()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO carts (id, owner_id, discount, tax, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id, discount = EXCLUDED.discount,
		    tax = EXCLUDED.tax, updated_at = EXCLUDED.updated_at
	`, s.ID, s.OwnerID, formatOptional(s.Discount), formatOptional(s.Tax), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete cart_items: %w", err)
	}

	for pos, it := range s.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO cart_items (cart_id, product_id, name, unit_price, quantity, image, position)
			VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		`, s.ID, it.ProductID, it.Name, it.UnitPrice.String(), it.Quantity, it.Image, pos)
		if err != nil {
			return fmt.Errorf("insert cart_item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("cart exists: %w", err)
	}
	return exists, nil
}

func parseOptional(v string) (*money.Money, error) {
	if v == "" {
		return nil, nil
	}
	m, err := money.Parse(v)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func formatOptional(m *money.Money) *string {
	if m == nil {
		return nil
	}
	s := m.String()
	return &s
}

var _ Repository = (*PostgresRepository)(nil)
