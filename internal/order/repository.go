package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository persists orders. Finders return (nil, nil) when nothing matches.
type Repository interface {
	FindByID(ctx context.Context, orderID string) (*Order, error)
	FindByPaymentReference(ctx context.Context, ref string) (*Order, error)
	Save(ctx context.Context, o *Order) error
	ListByCustomer(ctx context.Context, customerID string) ([]*Order, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

const selectOrder = `SELECT id, customer, delivery, payment, status, status_history, notes, created_at, updated_at, version
         FROM orders`

type rowScanner interface {
	Scan(dest ...any) error
}

// Save inserts a new order or updates the stored revision the order was
// loaded from. A revision changed by someone else fails with
// ErrConcurrentUpdate and nothing is written.
func (r *repo) Save(ctx context.Context, o *Order) error {
	s := o.Snapshot()

	customer, err := json.Marshal(s.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	delivery, err := json.Marshal(s.Delivery)
	if err != nil {
		return fmt.Errorf("marshal delivery: %w", err)
	}
	history, err := json.Marshal(s.History)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}
	var (
		payment          sql.NullString
		preferenceID     sql.NullString
		gatewayPaymentID sql.NullString
	)
	if s.Payment != nil {
		raw, err := json.Marshal(s.Payment)
		if err != nil {
			return fmt.Errorf("marshal payment: %w", err)
		}
		payment = nullString(string(raw))
		preferenceID = nullString(s.Payment.PreferenceID)
		gatewayPaymentID = nullString(s.Payment.GatewayPaymentID)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var res sql.Result
	if s.Version == 0 {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO orders (id, customer_id, customer, delivery, payment, status, status_history, notes,
                                 subtotal, shipping_cost, total_amount, preference_id, gateway_payment_id, created_at, updated_at, version)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1)
             ON CONFLICT (id) DO NOTHING`,
			s.ID, s.Customer.ID, string(customer), string(delivery), payment, string(s.Status), string(history), s.Notes,
			s.Subtotal, s.ShippingCost, s.Total, preferenceID, gatewayPaymentID, s.CreatedAt, s.UpdatedAt,
		)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE orders SET payment = $2, status = $3, status_history = $4, notes = $5,
                 preference_id = $6, gateway_payment_id = $7, updated_at = $8, version = version + 1
             WHERE id = $1 AND version = $9`,
			s.ID, payment, string(s.Status), string(history), s.Notes,
			preferenceID, gatewayPaymentID, s.UpdatedAt, s.Version,
		)
	}
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}
	if n == 0 {
		return ErrConcurrentUpdate.Withf("order %s changed since revision %d", s.ID, s.Version)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete order_items: %w", err)
	}

	for pos, it := range s.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, name, category, unit_price, quantity, position)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.NewString(), s.ID, it.ProductID, it.Name, it.Category, it.UnitPrice, it.Quantity, pos,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	o.version = s.Version + 1
	return nil
}

func (r *repo) FindByID(ctx context.Context, orderID string) (*Order, error) {
	return r.findOne(ctx, selectOrder+` WHERE id = $1`, orderID)
}

// FindByPaymentReference matches either the gateway preference id or the
// gateway payment id.
func (r *repo) FindByPaymentReference(ctx context.Context, ref string) (*Order, error) {
	return r.findOne(ctx,
		selectOrder+` WHERE preference_id = $1 OR gateway_payment_id = $1 ORDER BY created_at DESC LIMIT 1`,
		ref,
	)
}

func (r *repo) findOne(ctx context.Context, query string, arg string) (*Order, error) {
	s, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	if s.Items, err = r.loadItems(ctx, s.ID); err != nil {
		return nil, err
	}
	return FromSnapshot(s)
}

func (r *repo) ListByCustomer(ctx context.Context, customerID string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		selectOrder+` WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	var snaps []Snapshot
	for rows.Next() {
		s, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("rows: %w", err)
	}
	rows.Close()

	orders := make([]*Order, 0, len(snaps))
	for _, s := range snaps {
		if s.Items, err = r.loadItems(ctx, s.ID); err != nil {
			return nil, err
		}
		o, err := FromSnapshot(s)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", s.ID, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *repo) loadItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, name, category, unit_price, quantity
         FROM order_items WHERE order_id = $1 ORDER BY position`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Category, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func scanOrder(row rowScanner) (Snapshot, error) {
	var (
		s                           Snapshot
		status                      string
		customer, delivery, history []byte
		payment                     []byte
	)
	if err := row.Scan(&s.ID, &customer, &delivery, &payment, &status, &history, &s.Notes, &s.CreatedAt, &s.UpdatedAt, &s.Version); err != nil {
		return Snapshot{}, err
	}
	s.Status = Status(status)

	if err := json.Unmarshal(customer, &s.Customer); err != nil {
		return Snapshot{}, fmt.Errorf("decode customer: %w", err)
	}
	if err := json.Unmarshal(delivery, &s.Delivery); err != nil {
		return Snapshot{}, fmt.Errorf("decode delivery: %w", err)
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &s.History); err != nil {
			return Snapshot{}, fmt.Errorf("decode status history: %w", err)
		}
	}
	if len(payment) > 0 {
		s.Payment = &PaymentInfo{}
		if err := json.Unmarshal(payment, s.Payment); err != nil {
			return Snapshot{}, fmt.Errorf("decode payment: %w", err)
		}
	}
	return s, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
