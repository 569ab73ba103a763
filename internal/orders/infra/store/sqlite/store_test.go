package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/orders-service/internal/orders/core/domain"
	"github.com/jcmexdev/orders-service/internal/orders/core/domain/entity"
	"github.com/jcmexdev/orders-service/internal/orders/core/ports"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedOrder(t *testing.T, store *Store, amount string, items ...entity.OrderItem) *entity.Order {
	t.Helper()
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	created, err := store.Create(context.Background(), &entity.Order{
		TotalAmount: dec(amount),
		TotalItems:  total,
		Status:      entity.StatusPending,
		Items:       items,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return created
}

func TestCreateAndFindByID(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	created := seedOrder(t, store, "25",
		entity.OrderItem{ProductID: "p1", Quantity: 2, Price: dec("10")},
		entity.OrderItem{ProductID: "p2", Quantity: 1, Price: dec("5")},
	)
	if created.ID == "" {
		t.Fatal("expected a generated order id")
	}

	got, err := store.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.TotalAmount.Equal(dec("25")) || got.TotalItems != 3 {
		t.Fatalf("unexpected totals: %s / %d", got.TotalAmount, got.TotalItems)
	}
	if got.Status != entity.StatusPending || got.Paid {
		t.Fatalf("unexpected state: status=%s paid=%v", got.Status, got.Paid)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	prices := map[string]decimal.Decimal{}
	for _, it := range got.Items {
		prices[it.ProductID] = it.Price
	}
	if !prices["p1"].Equal(dec("10")) || !prices["p2"].Equal(dec("5")) {
		t.Fatalf("unexpected item prices: %v", prices)
	}
	if got.Receipt != nil {
		t.Fatal("new order must not have a receipt")
	}
}

func TestFindByIDNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.FindByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	created := seedOrder(t, store, "10", entity.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("10")})

	updated, err := store.UpdateStatus(ctx, created.ID, entity.StatusConfirmed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != entity.StatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", updated.Status)
	}

	if _, err := store.UpdateStatus(ctx, "missing", entity.StatusConfirmed); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing order, got %v", err)
	}
}

func TestMarkPaidIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	created := seedOrder(t, store, "10", entity.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("10")})

	paidAt := time.Now().UTC()
	updated, err := store.MarkPaid(ctx, created.ID, paidAt, "pay_123", "https://pay.example/receipt/1")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if !updated.Paid || updated.Status != entity.StatusPaid {
		t.Fatalf("expected paid PAID order, got paid=%v status=%s", updated.Paid, updated.Status)
	}
	if updated.PaidAt == nil || !updated.PaidAt.Equal(paidAt) {
		t.Fatalf("unexpected paidAt: %v", updated.PaidAt)
	}
	if updated.PaymentReference != "pay_123" {
		t.Fatalf("unexpected payment reference %q", updated.PaymentReference)
	}
	if updated.Receipt == nil || updated.Receipt.ReceiptURL != "https://pay.example/receipt/1" {
		t.Fatalf("expected exactly one receipt with url, got %+v", updated.Receipt)
	}
	if updated.Receipt.OrderID != created.ID {
		t.Fatalf("receipt linked to wrong order: %s", updated.Receipt.OrderID)
	}
}

func TestMarkPaidMissingOrderWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.MarkPaid(ctx, "missing", time.Now().UTC(), "pay_1", "https://pay.example/r/1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var receipts int64
	if err := store.db.QueryRow("SELECT COUNT(*) FROM order_receipts").Scan(&receipts); err != nil {
		t.Fatalf("count receipts: %v", err)
	}
	if receipts != 0 {
		t.Fatalf("expected no orphan receipts, got %d", receipts)
	}
}

func TestFindManyAndCountWithFilter(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	var ids []string
	for i := 0; i < 5; i++ {
		o := seedOrder(t, store, "1", entity.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("1")})
		ids = append(ids, o.ID)
	}
	for i := 0; i < 2; i++ {
		if _, err := store.UpdateStatus(ctx, ids[i], entity.StatusCancelled); err != nil {
			t.Fatalf("update status: %v", err)
		}
	}

	cancelled := entity.StatusCancelled
	count, err := store.Count(ctx, ports.OrderFilter{Status: &cancelled})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 cancelled orders, got %d", count)
	}

	orders, err := store.FindMany(ctx, ports.OrderFilter{Status: &cancelled}, 10, 0)
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	for _, o := range orders {
		if o.Status != entity.StatusCancelled {
			t.Fatalf("filter leaked status %s", o.Status)
		}
	}

	all, err := store.FindMany(ctx, ports.OrderFilter{}, 3, 3)
	if err != nil {
		t.Fatalf("find many page 2: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders on the last page, got %d", len(all))
	}
}
