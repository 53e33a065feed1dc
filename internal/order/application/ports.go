package application

import (
	"context"

	"github.com/pcamara21/Checkout-Backend/internal/order/domain"
)

type OrderStore interface {
	Create(ctx context.Context, o domain.Order) error
	Get(ctx context.Context, id string) (domain.Order, error)
	// UpdateStatus merges the new status into the stored record and returns
	// the updated order. Atomic at the record level.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error)
}

// SourceRef is the payment-instrument handle supplied by the client or by a
// source.chargeable notification.
type SourceRef struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

const SourceStatusChargeable = "chargeable"

type ChargeParams struct {
	SourceID       string
	Amount         int64
	Currency       string
	ReceiptEmail   string
	IdempotencyKey string
}

type Charge struct {
	ID     string
	Status string
}

const ChargeStatusSucceeded = "succeeded"

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// PaymentGateway is the narrow surface of the external payment processor used
// by the reconciler. Webhook verification lives with the gateway package as
// well but is consumed by the webhook dispatcher, not here.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, p ChargeParams) (Charge, error)
	CreatePaymentIntent(ctx context.Context, amount int64, currency, orderID string) (PaymentIntent, error)
}

// SKUPricer resolves a SKU identifier to its unit amount in minor units.
type SKUPricer interface {
	UnitAmount(skuID string) (int64, error)
}
