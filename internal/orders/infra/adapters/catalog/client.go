// Package catalog is the HTTP adapter for the remote catalog authority.
//
// The catalog exposes a batch validate/fetch endpoint: POST a list of
// product ids, receive one {id, name, price} record per distinct id (order
// not guaranteed). Any transport or remote-side error surfaces as a
// domain.RemoteCallError carrying the original payload; this client never
// retries — retry policy belongs to the caller layer because an
// order-creation side effect is not blindly retry-safe.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/orders-service/internal/orders/core/domain"
	"github.com/jcmexdev/orders-service/internal/orders/core/domain/entity"
	"github.com/jcmexdev/orders-service/internal/orders/core/ports"
)

const serviceName = "catalog"

// maxErrorBody bounds how much of a remote error payload is kept.
const maxErrorBody = 4 << 10

// Ensure the adapter satisfies the port at compile time.
var _ ports.CatalogClient = (*Client)(nil)

// Client talks JSON over HTTP to the catalog service.
type Client struct {
	baseURL string
	httpc   *http.Client
	tracer  trace.Tracer
}

// NewClient builds a catalog client. httpc should carry the deployment's
// remote-call timeout; a nil httpc falls back to http.DefaultClient.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		httpc:   httpc,
		tracer:  otel.Tracer("orders-service/catalog"),
	}
}

type validateRequest struct {
	IDs []string `json:"ids"`
}

type productDTO struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// FetchProducts validates the given ids against the catalog and returns
// their current records.
func (c *Client) FetchProducts(ctx context.Context, ids []string) ([]entity.Product, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.validate-products", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("catalog.requested_ids", len(ids)))

	body, err := json.Marshal(validateRequest{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("catalog: encode request: %w", err)
	}

	url := c.baseURL + "/products/validate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
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

	var dtos []productDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		span.RecordError(err)
		return nil, &domain.RemoteCallError{Service: serviceName, Err: fmt.Errorf("decode response: %w", err)}
	}

	products := make([]entity.Product, len(dtos))
	for i, d := range dtos {
		products[i] = entity.Product{ID: d.ID, Name: d.Name, Price: d.Price}
	}
	return products, nil
}
