package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/orders-service/internal/orders/core/app"
	"github.com/jcmexdev/orders-service/internal/orders/core/domain"
	"github.com/jcmexdev/orders-service/internal/orders/core/domain/entity"
	"github.com/jcmexdev/orders-service/internal/pkg/cache"
)

// Handler translates HTTP requests into orchestrator calls and maps the
// core's error taxonomy onto status codes.
type Handler struct {
	svc   *app.Service
	guard cache.Guard // nil-safe: webhook dedup skipped if nil
}

// NewHandler initializes the handler. guard may be nil — in that case
// replayed payment webhooks are not deduplicated.
func NewHandler(svc *app.Service, guard cache.Guard) *Handler {
	return &Handler{svc: svc, guard: guard}
}

// CreateOrder persists a new order priced from the catalog and issues a
// payment session for it.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "items are required")
		return
	}

	items := make([]entity.CreateOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_item", "product_id and a positive quantity are required")
			return
		}
		items = append(items, entity.CreateOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	order, err := h.svc.Create(r.Context(), items)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	session, err := h.svc.CreatePaymentSession(r.Context(), order)
	if err != nil {
		// The order is already persisted at this point; the caller can
		// retry checkout against it once the payment service recovers.
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{
		Order: mapEnrichedOrder(order),
		PaymentSession: PaymentSessionResponse{
			CancelURL:  session.CancelURL,
			SuccessURL: session.SuccessURL,
			PaymentURL: session.PaymentURL,
		},
	})
}

// GetOrderByID retrieves a single order enriched with product names.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "order_id_required", "")
		return
	}

	order, err := h.svc.Get(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapEnrichedOrder(order))
}

// ListOrders returns one page of orders plus paging metadata.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
		return
	}

	var status *entity.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, ok := entity.ParseStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be one of the known order statuses")
			return
		}
		status = &st
	}

	pageResult, err := h.svc.List(r.Context(), page, limit, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := make([]OrderResponse, len(pageResult.Data))
	for i := range pageResult.Data {
		data[i] = mapOrder(&pageResult.Data[i])
	}
	writeJSON(w, http.StatusOK, ListOrdersResponse{
		Data: data,
		Meta: MetaResponse{
			CurrentPage: pageResult.Meta.CurrentPage,
			TotalItems:  pageResult.Meta.TotalItems,
			TotalPages:  pageResult.Meta.TotalPages,
		},
	})
}

// ChangeOrderStatus applies a generic status transition.
func (h *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	status, ok := entity.ParseStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_status", "status must be one of the known order statuses")
		return
	}

	order, err := h.svc.ChangeStatus(r.Context(), orderID, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

// PaymentWebhook is the trusted confirmation path driven by the payment
// provider. Redeliveries of the same payment id are acknowledged without
// being applied twice.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req PaymentWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.ReceiptURL == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "order_id, payment_id and receipt_url are required")
		return
	}

	if h.guard != nil {
		first, err := h.guard.Once(r.Context(), req.PaymentID)
		if err != nil {
			slog.ErrorContext(r.Context(), "webhook dedup check failed", "payment_id", req.PaymentID, "error", err)
			writeError(w, http.StatusInternalServerError, "dedup_unavailable", "")
			return
		}
		if !first {
			writeJSON(w, http.StatusOK, WebhookAck{Status: "already_processed"})
			return
		}
	}

	order, err := h.svc.MarkPaid(r.Context(), req.OrderID, req.PaymentID, req.ReceiptURL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := mapOrder(order)
	writeJSON(w, http.StatusOK, WebhookAck{Status: "paid", Order: &resp})
}

func mapOrder(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}
	return OrderResponse{
		ID:               o.ID,
		TotalAmount:      o.TotalAmount,
		TotalItems:       o.TotalItems,
		Status:           string(o.Status),
		Paid:             o.Paid,
		PaidAt:           o.PaidAt,
		PaymentReference: o.PaymentReference,
		Items:            items,
		Receipt:          mapReceipt(o.Receipt),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func mapEnrichedOrder(o *entity.EnrichedOrder) OrderResponse {
	resp := mapOrder(&o.Order)
	resp.Items = make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		resp.Items[i] = OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			Price:       it.Price,
			ProductName: it.ProductName,
		}
	}
	return resp
}

func mapReceipt(r *entity.OrderReceipt) *ReceiptResponse {
	if r == nil {
		return nil
	}
	return &ReceiptResponse{ID: r.ID, ReceiptURL: r.ReceiptURL}
}

// writeServiceError maps the core's error taxonomy onto HTTP statuses:
// not-found 404, integrity 422, forbidden PAID transition 409, remote-call
// failure 502, anything else 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var integrity *domain.IntegrityError
	var remote *domain.RemoteCallError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrPaidViaStatusChange):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.As(err, &integrity):
		writeError(w, http.StatusUnprocessableEntity, "unknown_products", integrity.Error())
	case errors.As(err, &remote):
		writeError(w, http.StatusBadGateway, "remote_call_failed", remote.Error())
	default:
		slog.ErrorContext(r.Context(), "unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
