package entity

import "github.com/shopspring/decimal"

// Product is a read-only value fetched from the remote catalog, which owns
// and prices it exclusively. Only ProductID and Price are ever persisted
// (denormalized into OrderItem); Name lives only in enriched responses.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// PaymentLine is one line of a payment session request.
type PaymentLine struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// PaymentSession is the checkout session issued by the payment provider.
type PaymentSession struct {
	CancelURL  string
	SuccessURL string
	PaymentURL string
}
