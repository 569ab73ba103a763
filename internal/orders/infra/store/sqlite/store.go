// Package sqlite provides the SQLite-backed implementation of
// ports.OrderStore.
//
// WAL mode is enabled on Open so readers never block the writer. The pool
// is capped at a single connection, which also makes every multi-statement
// write (order+items on Create, order+receipt on MarkPaid) serialize
// naturally on top of the explicit transaction it already runs in.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/orders-service/internal/orders/core/domain"
	"github.com/jcmexdev/orders-service/internal/orders/core/domain/entity"
	"github.com/jcmexdev/orders-service/internal/orders/core/ports"

	// Register the pure-Go SQLite driver. We use modernc.org/sqlite instead
	// of mattn/go-sqlite3 to avoid CGO requirements.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on Open. Monetary columns are TEXT
// holding exact decimal strings; timestamps are RFC3339 TEXT (SQLite idiom).
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id                TEXT PRIMARY KEY,
    total_amount      TEXT    NOT NULL,
    total_items       INTEGER NOT NULL,
    status            TEXT    NOT NULL,
    paid              INTEGER NOT NULL DEFAULT 0,
    paid_at           TEXT,
    payment_reference TEXT,
    created_at        TEXT    NOT NULL,
    updated_at        TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

CREATE TABLE IF NOT EXISTS order_items (
    id         TEXT PRIMARY KEY,
    order_id   TEXT    NOT NULL REFERENCES orders(id),
    product_id TEXT    NOT NULL,
    quantity   INTEGER NOT NULL,
    price      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

CREATE TABLE IF NOT EXISTS order_receipts (
    id          TEXT PRIMARY KEY,
    order_id    TEXT NOT NULL UNIQUE REFERENCES orders(id),
    receipt_url TEXT NOT NULL
);
`

var _ ports.OrderStore = (*Store)(nil)

// Store is the SQLite implementation of ports.OrderStore.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at the given path and applies the
// schema. busy_timeout waits for locks instead of failing immediately.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// Create persists the order and its items inside one transaction. The
// store generates the order and item ids.
func (s *Store) Create(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin create: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	created := *o
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, total_amount, total_items, status, paid, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		created.ID,
		created.TotalAmount.String(),
		created.TotalItems,
		string(created.Status),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert order: %w", err)
	}

	created.Items = make([]entity.OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.ID = uuid.NewString()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?, ?)`,
			it.ID, created.ID, it.ProductID, it.Quantity, it.Price.String(),
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: insert order item %q: %w", it.ProductID, err)
		}
		created.Items[i] = it
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit create: %w", err)
	}
	return &created, nil
}

// FindByID returns the order with its items and receipt, if any.
func (s *Store) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	const q = `
		SELECT id, total_amount, total_items, status, paid, paid_at,
		       COALESCE(payment_reference, ''), created_at, updated_at
		FROM   orders
		WHERE  id = ?`

	o, err := scanOrder(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order %q: %w", id, err)
	}

	if err := s.loadItems(ctx, o); err != nil {
		return nil, err
	}
	if err := s.loadReceipt(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// FindMany returns a page of orders, scalar fields only. Items are loaded
// on point lookups, not on listings.
func (s *Store) FindMany(ctx context.Context, f ports.OrderFilter, limit, offset int) ([]entity.Order, error) {
	q := `
		SELECT id, total_amount, total_items, status, paid, paid_at,
		       COALESCE(payment_reference, ''), created_at, updated_at
		FROM   orders`
	args := []any{}
	if f.Status != nil {
		q += " WHERE status = ?"
		args = append(args, string(*f.Status))
	}
	q += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	return orders, nil
}

// Count returns how many orders match the filter.
func (s *Store) Count(ctx context.Context, f ports.OrderFilter) (int64, error) {
	q := "SELECT COUNT(*) FROM orders"
	args := []any{}
	if f.Status != nil {
		q += " WHERE status = ?"
		args = append(args, string(*f.Status))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sqlite: count orders: %w", err)
	}
	return total, nil
}

// UpdateStatus sets the status and returns the updated order.
func (s *Store) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update status for %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// MarkPaid applies the payment bookkeeping fields and creates the receipt
// in a single transaction, so a PAID order without a receipt is never
// observable.
func (s *Store) MarkPaid(ctx context.Context, id string, paidAt time.Time, paymentReference, receiptURL string) (*entity.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin mark paid: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET    paid = 1, paid_at = ?, payment_reference = ?, status = ?, updated_at = ?
		WHERE  id = ?`,
		formatTime(paidAt.UTC()),
		paymentReference,
		string(entity.StatusPaid),
		formatTime(time.Now().UTC()),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: mark order %q paid: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO order_receipts (id, order_id, receipt_url) VALUES (?, ?, ?)",
		uuid.NewString(), id, receiptURL,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert receipt for %q: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit mark paid: %w", err)
	}
	return s.FindByID(ctx, id)
}

func (s *Store) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, product_id, quantity, price FROM order_items WHERE order_id = ? ORDER BY id",
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: load items for %q: %w", o.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.OrderItem
		var price string
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &price); err != nil {
			return fmt.Errorf("sqlite: scan item row: %w", err)
		}
		it.Price, err = decimal.NewFromString(price)
		if err != nil {
			return fmt.Errorf("sqlite: parse item price %q: %w", price, err)
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (s *Store) loadReceipt(ctx context.Context, o *entity.Order) error {
	var r entity.OrderReceipt
	err := s.db.QueryRowContext(ctx,
		"SELECT id, order_id, receipt_url FROM order_receipts WHERE order_id = ?",
		o.ID,
	).Scan(&r.ID, &r.OrderID, &r.ReceiptURL)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sqlite: load receipt for %q: %w", o.ID, err)
	}
	o.Receipt = &r
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*entity.Order, error) {
	var o entity.Order
	var amount, createdAt, updatedAt string
	var paid int
	var paidAt sql.NullString

	err := row.Scan(&o.ID, &amount, &o.TotalItems, (*string)(&o.Status), &paid, &paidAt,
		&o.PaymentReference, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	o.Paid = paid != 0
	if o.TotalAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse total amount %q: %w", amount, err)
	}
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		t, err := parseTime(paidAt.String)
		if err != nil {
			return nil, err
		}
		o.PaidAt = &t
	}
	return &o, nil
}
