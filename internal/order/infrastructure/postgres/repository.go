package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pcamara21/Checkout-Backend/internal/order/domain"
	"github.com/pcamara21/Checkout-Backend/pkg/tracing"
)

//go:embed schema.sql
var schema string

// Migrate applies the schema. Idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

// Repository is the Postgres order store. Order mutations and their outbox
// events are written in one transaction, so the event stream never reports a
// transition that was not persisted.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO orders (id, amount, currency, email, shipping, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.Amount, o.Currency, o.Email, shipping, o.Status, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(`INSERT INTO order_items (order_id, sku, quantity, unit_amount) VALUES ($1,$2,$3,$4)`,
			o.ID, item.Parent, item.Quantity, item.UnitAmount)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	payload, err := json.Marshal(domain.OrderCreated{
		OrderID:  o.ID,
		Amount:   o.Amount,
		Currency: o.Currency,
		Email:    o.Email,
		Status:   o.Status,
	})
	if err != nil {
		return err
	}
	if err := insertOutbox(ctx, tx, o.ID, "OrderCreated", payload, tracing.Traceparent(ctx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	return getOrder(ctx, r.pool, id)
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var previous domain.Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, status); err != nil {
		return domain.Order{}, err
	}

	payload, err := json.Marshal(domain.OrderStatusChanged{OrderID: id, Previous: previous, Status: status})
	if err != nil {
		return domain.Order{}, err
	}
	if err := insertOutbox(ctx, tx, id, "OrderStatusChanged", payload, tracing.Traceparent(ctx)); err != nil {
		return domain.Order{}, err
	}

	order, err := getOrder(ctx, tx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getOrder(ctx context.Context, q querier, id string) (domain.Order, error) {
	var (
		o        domain.Order
		shipping []byte
	)
	err := q.QueryRow(ctx, `SELECT id, amount, currency, email, shipping, status, created_at, updated_at
			FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Amount, &o.Currency, &o.Email, &shipping, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return domain.Order{}, err
	}

	rows, err := q.Query(ctx, `SELECT sku, quantity, unit_amount FROM order_items WHERE order_id=$1 ORDER BY sku`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.Parent, &item.Quantity, &item.UnitAmount); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateID, eventType string, payload []byte, traceparent string) error {
	_, err := tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
			VALUES ('order', $1, $2, $3, $4, 'pending')`,
		aggregateID, eventType, payload, traceparent)
	return err
}
