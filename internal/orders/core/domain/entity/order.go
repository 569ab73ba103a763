package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of order lifecycle states. It is defined
// once here and imported by every consumer: transport-level validation and
// the status transition logic both read the same list.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusPaid      OrderStatus = "PAID"
)

// Statuses returns every valid order status.
func Statuses() []OrderStatus {
	return []OrderStatus{
		StatusPending,
		StatusConfirmed,
		StatusDelivered,
		StatusCancelled,
		StatusPaid,
	}
}

// ParseStatus validates a raw status string against the shared list.
func ParseStatus(s string) (OrderStatus, bool) {
	for _, st := range Statuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Order is a persisted purchase record. Totals are computed once at
// creation time from catalog prices and stored alongside the items.
type Order struct {
	ID               string
	TotalAmount      decimal.Decimal
	TotalItems       int
	Status           OrderStatus
	Paid             bool
	PaidAt           *time.Time
	PaymentReference string
	Items            []OrderItem
	Receipt          *OrderReceipt
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem is a single line within an order. Price is a snapshot of the
// catalog price at order creation time and is never re-read afterwards.
type OrderItem struct {
	ID        string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Subtotal is the line extension: quantity times the snapshot price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderReceipt is created only as a side effect of payment confirmation.
type OrderReceipt struct {
	ID         string
	OrderID    string
	ReceiptURL string
}

// CreateOrderItem is a client-supplied line of a creation request. It
// deliberately carries no price: prices come only from the catalog.
type CreateOrderItem struct {
	ProductID string
	Quantity  int
}

// EnrichedItem is an order item annotated with the product name resolved
// live from the catalog.
type EnrichedItem struct {
	OrderItem
	ProductName string
}

// EnrichedOrder is a response shape only: an order whose items carry
// product names. It is never persisted in this form.
type EnrichedOrder struct {
	Order
	Items []EnrichedItem
}
