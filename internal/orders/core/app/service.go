// Package app implements the order orchestrator: creation, enriched
// retrieval, listing, status transitions, payment session issuance and
// payment confirmation. It fans out to the catalog and payment clients and
// writes through the order store; it holds no mutable state of its own, so
// a single Service is safe for concurrent request-scoped use.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/orders-service/internal/orders/core/domain"
	"github.com/jcmexdev/orders-service/internal/orders/core/domain/entity"
	"github.com/jcmexdev/orders-service/internal/orders/core/ports"
)

// Service coordinates the order lifecycle across the store and the two
// remote services.
type Service struct {
	store    ports.OrderStore
	catalog  ports.CatalogClient
	payments ports.PaymentClient
	currency string
}

// NewService wires the orchestrator with its collaborators. currency is the
// fixed checkout currency passed to the payment provider.
func NewService(store ports.OrderStore, catalog ports.CatalogClient, payments ports.PaymentClient, currency string) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		payments: payments,
		currency: currency,
	}
}

// Create builds and persists an order from client-supplied lines. Prices
// are resolved from the catalog, never taken from the request: the store
// receives the catalog snapshot and totals computed from that same
// snapshot. Nothing is persisted on any failure path.
func (s *Service) Create(ctx context.Context, items []entity.CreateOrderItem) (*entity.EnrichedOrder, error) {
	ids := distinctProductIDs(items)

	products, err := s.catalog.FetchProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := indexProducts(products)
	if missing := missingIDs(ids, byID); len(missing) > 0 {
		return nil, &domain.IntegrityError{Missing: missing}
	}

	totalAmount := decimal.Zero
	totalItems := 0
	orderItems := make([]entity.OrderItem, len(items))
	for i, it := range items {
		line := entity.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     byID[it.ProductID].Price,
		}
		orderItems[i] = line
		totalAmount = totalAmount.Add(line.Subtotal())
		totalItems += it.Quantity
	}

	order, err := s.store.Create(ctx, &entity.Order{
		TotalAmount: totalAmount,
		TotalItems:  totalItems,
		Status:      entity.StatusPending,
		Items:       orderItems,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"total_amount", order.TotalAmount.String(),
		"total_items", order.TotalItems,
	)
	return enrich(order, byID), nil
}

// Get returns the order annotated with product names fetched live from the
// catalog. Names are never cached or stored, so every read pays one catalog
// round trip in exchange for never serving a stale name. A missing order
// fails with domain.ErrNotFound before any remote call is made.
func (s *Service) Get(ctx context.Context, id string) (*entity.EnrichedOrder, error) {
	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(order.Items))
	seen := make(map[string]struct{}, len(order.Items))
	for _, it := range order.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products, err := s.catalog.FetchProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := indexProducts(products)
	if missing := missingIDs(ids, byID); len(missing) > 0 {
		return nil, &domain.IntegrityError{Missing: missing}
	}
	return enrich(order, byID), nil
}

// OrderPage is one page of orders plus paging metadata.
type OrderPage struct {
	Data []entity.Order
	Meta PageMeta
}

// PageMeta describes the page position relative to the full result set.
type PageMeta struct {
	CurrentPage int
	TotalItems  int64
	TotalPages  int64
}

// List runs a count and a bounded offset fetch with an optional status
// filter. The two reads are independent, not a consistent snapshot: under
// concurrent writes the meta may disagree with the returned page. That is
// an accepted trade-off, not a bug.
func (s *Service) List(ctx context.Context, page, limit int, status *entity.OrderStatus) (*OrderPage, error) {
	f := ports.OrderFilter{Status: status}

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.FindMany(ctx, f, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Data: orders,
		Meta: PageMeta{
			CurrentPage: page,
			TotalItems:  total,
			TotalPages:  (total + int64(limit) - 1) / int64(limit),
		},
	}, nil
}

// ChangeStatus applies a generic status transition. Re-applying the current
// status is a no-op that issues no write. PAID is rejected here so that a
// PAID order always carries its payment bookkeeping and receipt; MarkPaid
// is the only path to PAID.
func (s *Service) ChangeStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	if status == entity.StatusPaid {
		return nil, domain.ErrPaidViaStatusChange
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return &current.Order, nil
	}

	return s.store.UpdateStatus(ctx, id, status)
}

// CreatePaymentSession asks the payment provider for a checkout session
// built from the enriched order's lines. It mutates nothing locally.
func (s *Service) CreatePaymentSession(ctx context.Context, order *entity.EnrichedOrder) (*entity.PaymentSession, error) {
	lines := make([]entity.PaymentLine, len(order.Items))
	for i, it := range order.Items {
		lines[i] = entity.PaymentLine{
			Name:     it.ProductName,
			Price:    it.Price,
			Quantity: it.Quantity,
		}
	}
	return s.payments.CreateSession(ctx, order.ID, s.currency, lines)
}

// MarkPaid is the terminal, trusted write path driven by an external
// payment confirmation. The store applies paid, paidAt, the payment
// reference, the PAID status and the receipt in one atomic write; no
// pricing is re-validated and the catalog is not consulted.
func (s *Service) MarkPaid(ctx context.Context, orderID, paymentReference, receiptURL string) (*entity.Order, error) {
	order, err := s.store.MarkPaid(ctx, orderID, time.Now().UTC(), paymentReference, receiptURL)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order marked as paid", "order_id", order.ID, "payment_reference", paymentReference)
	return order, nil
}

func distinctProductIDs(items []entity.CreateOrderItem) []string {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

func indexProducts(products []entity.Product) map[string]entity.Product {
	byID := make(map[string]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

func missingIDs(ids []string, byID map[string]entity.Product) []string {
	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func enrich(o *entity.Order, byID map[string]entity.Product) *entity.EnrichedOrder {
	items := make([]entity.EnrichedItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = entity.EnrichedItem{
			OrderItem:   it,
			ProductName: byID[it.ProductID].Name,
		}
	}
	return &entity.EnrichedOrder{Order: *o, Items: items}
}
