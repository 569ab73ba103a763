package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/orders-service/internal/orders/core/domain"
	"github.com/jcmexdev/orders-service/internal/orders/core/domain/entity"
)

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payment-sessions" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			OrderID  string `json:"order_id"`
			Currency string `json:"currency"`
			Items    []struct {
				Name     string          `json:"name"`
				Price    decimal.Decimal `json:"price"`
				Quantity int             `json:"quantity"`
			} `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.OrderID != "order-1" || req.Currency != "usd" {
			t.Fatalf("unexpected request: %+v", req)
		}
		if len(req.Items) != 1 || req.Items[0].Name != "Widget" || req.Items[0].Quantity != 2 {
			t.Fatalf("unexpected items: %+v", req.Items)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cancel_url":"https://pay.example/c","success_url":"https://pay.example/s","url":"https://pay.example/session/1"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	session, err := client.CreateSession(context.Background(), "order-1", "usd", []entity.PaymentLine{
		{Name: "Widget", Price: decimal.RequireFromString("10"), Quantity: 2},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Wire names (cancel_url, success_url, url) are remapped here.
	if session.CancelURL != "https://pay.example/c" {
		t.Fatalf("unexpected cancel url: %s", session.CancelURL)
	}
	if session.SuccessURL != "https://pay.example/s" {
		t.Fatalf("unexpected success url: %s", session.SuccessURL)
	}
	if session.PaymentURL != "https://pay.example/session/1" {
		t.Fatalf("unexpected payment url: %s", session.PaymentURL)
	}
}

func TestCreateSessionRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "payment provider unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	_, err := client.CreateSession(context.Background(), "order-1", "usd", nil)

	var remote *domain.RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteCallError, got %v", err)
	}
	if remote.Service != "payment" || remote.Status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected error details: %+v", remote)
	}
}
