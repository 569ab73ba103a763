// Package ports defines the interfaces the orchestrator depends on. The
// core owns these abstractions; infra adapters implement them.
package ports

import (
	"context"
	"time"

	"github.com/jcmexdev/orders-service/internal/orders/core/domain/entity"
)

// CatalogClient validates and fetches products from the remote catalog
// authority. The response is expected to contain one entry per distinct
// requested id; detecting a missing id is the caller's responsibility.
type CatalogClient interface {
	FetchProducts(ctx context.Context, ids []string) ([]entity.Product, error)
}

// PaymentClient issues checkout sessions with the external payment provider.
type PaymentClient interface {
	CreateSession(ctx context.Context, orderID, currency string, items []entity.PaymentLine) (*entity.PaymentSession, error)
}

// OrderFilter narrows listing and counting queries. A nil Status matches
// every order.
type OrderFilter struct {
	Status *entity.OrderStatus
}

// OrderStore is the durable CRUD surface over orders. Implementations must
// guarantee that Create persists the order and its items in a single write
// and that MarkPaid applies the payment fields and the receipt atomically.
type OrderStore interface {
	// Create persists the order together with its items, all-or-nothing.
	// Identifiers are generated by the store.
	Create(ctx context.Context, o *entity.Order) (*entity.Order, error)

	// FindByID returns the order with its items and receipt, or
	// domain.ErrNotFound.
	FindByID(ctx context.Context, id string) (*entity.Order, error)

	// FindMany returns a page of orders (scalar fields only, no items).
	FindMany(ctx context.Context, f OrderFilter, limit, offset int) ([]entity.Order, error)

	// Count returns the number of orders matching the filter.
	Count(ctx context.Context, f OrderFilter) (int64, error)

	// UpdateStatus sets the order status and returns the updated order, or
	// domain.ErrNotFound.
	UpdateStatus(ctx context.Context, id string, s entity.OrderStatus) (*entity.Order, error)

	// MarkPaid sets paid, paidAt, paymentReference and status PAID, and
	// creates the receipt, in one atomic write.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, paymentReference, receiptURL string) (*entity.Order, error)
}
