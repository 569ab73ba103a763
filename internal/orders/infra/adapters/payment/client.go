// Package payment is the HTTP adapter for the external payment provider.
// It issues checkout sessions and remaps the provider's wire field names
// (cancel_url, success_url, url) into the domain's PaymentSession shape.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/orders-service/internal/orders/core/domain"
	"github.com/jcmexdev/orders-service/internal/orders/core/domain/entity"
	"github.com/jcmexdev/orders-service/internal/orders/core/ports"
)

const serviceName = "payment"

const maxErrorBody = 4 << 10

var _ ports.PaymentClient = (*Client)(nil)

// Client talks JSON over HTTP to the payment service.
type Client struct {
	baseURL string
	httpc   *http.Client
	tracer  trace.Tracer
}

// NewClient builds a payment client. A nil httpc falls back to
// http.DefaultClient.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		httpc:   httpc,
		tracer:  otel.Tracer("orders-service/payment"),
	}
}

type sessionRequest struct {
	OrderID  string        `json:"order_id"`
	Currency string        `json:"currency"`
	Items    []sessionLine `json:"items"`
}

type sessionLine struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type sessionResponse struct {
	CancelURL  string `json:"cancel_url"`
	SuccessURL string `json:"success_url"`
	URL        string `json:"url"`
}

// CreateSession asks the provider for a checkout session for the given
// order lines. Failures surface as domain.RemoteCallError with the original
// payload preserved; nothing is retried here.
func (c *Client) CreateSession(ctx context.Context, orderID, currency string, items []entity.PaymentLine) (*entity.PaymentSession, error) {
	ctx, span := c.tracer.Start(ctx, "payment.create-session", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	lines := make([]sessionLine, len(items))
	for i, it := range items {
		lines[i] = sessionLine{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}

	body, err := json.Marshal(sessionRequest{OrderID: orderID, Currency: currency, Items: lines})
	if err != nil {
		return nil, fmt.Errorf("payment: encode request: %w", err)
	}

	url := c.baseURL + "/payment-sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payment: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpc.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.RemoteCallError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("%s", bytes.TrimSpace(payload))
		span.SetStatus(codes.Error, resp.Status)
		return nil, &domain.RemoteCallError{Service: serviceName, Status: resp.StatusCode, Err: err}
	}

	var dto sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		span.RecordError(err)
		return nil, &domain.RemoteCallError{Service: serviceName, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &entity.PaymentSession{
		CancelURL:  dto.CancelURL,
		SuccessURL: dto.SuccessURL,
		PaymentURL: dto.URL,
	}, nil
}
