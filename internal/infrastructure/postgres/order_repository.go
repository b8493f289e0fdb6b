package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
)

type OrderRepository struct{ db *sql.DB }

const orderColumns = `id, origin, payment_reference, customer_name, customer_email, customer_phone,
	delivery_address, items, subtotal, shipping, total, status, payment_status, created_at, updated_at`

// Place inserts the order and decrements every line inside one transaction.
// Lines are locked in product id order so concurrent placements cannot deadlock.
func (r *OrderRepository) Place(ctx context.Context, order *domain.Order) (_ []inventory.Item, err error) {
	if order == nil || order.ID == "" {
		return nil, fmt.Errorf("order repository: id is required")
	}

	lines := make([]inventory.Line, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	lines, err = inventory.Merge(lines)
	if err != nil {
		return nil, err
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal order items: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", domain.ErrRepository, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		order.ID,
		order.Origin.String(),
		nullable(order.PaymentReference()),
		order.Customer.Name,
		order.Customer.Email,
		order.Customer.Phone,
		order.Customer.DeliveryAddress,
		string(itemsJSON),
		order.Subtotal,
		order.Shipping,
		order.Total,
		string(order.Status),
		string(order.PaymentStatus),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("%w: insert order: %w", domain.ErrRepository, err)
	}

	items := make([]inventory.Item, 0, len(lines))
	for _, l := range lines {
		item, derr := decrement(ctx, tx, l.ProductID, l.Quantity)
		if derr != nil {
			err = derr
			return nil, err
		}
		items = append(items, *item)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", domain.ErrRepository, err)
	}
	return items, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *OrderRepository) FindByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	if reference == "" {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_reference = $1`, reference)
}

func (r *OrderRepository) findOne(ctx context.Context, query string, arg string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query order: %w", domain.ErrRepository, err)
	}
	return o, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: query orders: %w", domain.ErrRepository, err)
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan order: %w", domain.ErrRepository, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate orders: %w", domain.ErrRepository, err)
	}
	return out, nil
}

// Update persists lifecycle changes. Origin, items and amounts are fixed at
// placement and are not rewritten.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, payment_status = $2, updated_at = $3
		WHERE id = $4`,
		string(order.Status), string(order.PaymentStatus), order.UpdatedAt, order.ID)
	if err != nil {
		return fmt.Errorf("%w: update order: %w", domain.ErrRepository, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", domain.ErrRepository, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		o         domain.Order
		origin    string
		reference sql.NullString
		itemsJSON []byte
		status    string
		payment   string
	)
	if err := s.Scan(
		&o.ID,
		&origin,
		&reference,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.Customer.DeliveryAddress,
		&itemsJSON,
		&o.Subtotal,
		&o.Shipping,
		&o.Total,
		&status,
		&payment,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if o.Origin, err = domain.ParseOrigin(origin, reference.String); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	o.Status = domain.Status(status)
	o.PaymentStatus = domain.PaymentStatus(payment)
	return &o, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
