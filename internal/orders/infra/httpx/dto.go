package httpx

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	Items []CreateOrderItemDTO `json:"items"`
}

type CreateOrderItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type PaymentWebhookRequest struct {
	OrderID    string `json:"order_id"`
	PaymentID  string `json:"payment_id"`
	ReceiptURL string `json:"receipt_url"`
}

type OrderResponse struct {
	ID               string              `json:"id"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	TotalItems       int                 `json:"total_items"`
	Status           string              `json:"status"`
	Paid             bool                `json:"paid"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
	PaymentReference string              `json:"payment_reference,omitempty"`
	Items            []OrderItemResponse `json:"items,omitempty"`
	Receipt          *ReceiptResponse    `json:"receipt,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ProductName string          `json:"product_name,omitempty"`
}

type ReceiptResponse struct {
	ID         string `json:"id"`
	ReceiptURL string `json:"receipt_url"`
}

type PaymentSessionResponse struct {
	CancelURL  string `json:"cancel_url"`
	SuccessURL string `json:"success_url"`
	PaymentURL string `json:"payment_url"`
}

type CreateOrderResponse struct {
	Order          OrderResponse          `json:"order"`
	PaymentSession PaymentSessionResponse `json:"payment_session"`
}

type ListOrdersResponse struct {
	Data []OrderResponse `json:"data"`
	Meta MetaResponse    `json:"meta"`
}

type MetaResponse struct {
	CurrentPage int   `json:"current_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int64 `json:"total_pages"`
}

type WebhookAck struct {
	Status string         `json:"status"`
	Order  *OrderResponse `json:"order,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
