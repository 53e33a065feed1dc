package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("order not found")

// Status is the order's payment status. Besides the named constants the
// gateway may report arbitrary intermediate charge statuses (e.g. "disputed"),
// which are stored verbatim and treated as terminal.
type Status string

const (
	StatusCreated  Status = "created"
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// NeedsPayment reports whether a charge may still be attempted for an order
// in this status. Only a freshly created order qualifies: pending means a
// payment intent is already in flight, and everything else is a sink.
func (s Status) NeedsPayment() bool {
	return s == StatusCreated
}

// Terminal reports whether the status is a sink: no reconciliation transition
// leads out of it. Gateway pass-through statuses count as terminal too.
func (s Status) Terminal() bool {
	switch s {
	case StatusCreated, StatusPending:
		return false
	}
	return true
}

type Order struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Email     string    `json:"email"`
	Shipping  Shipping  `json:"shipping"`
	Items     []Item    `json:"items"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Item struct {
	Parent     string `json:"parent"` // SKU identifier
	Quantity   int    `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"`
}

type Shipping struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func NewOrder(currency, email string, shipping Shipping, items []Item) Order {
	var total int64
	for _, item := range items {
		total += int64(item.Quantity) * item.UnitAmount
	}
	now := time.Now().UTC()
	return Order{
		ID:        NewOrderID(),
		Amount:    total,
		Currency:  currency,
		Email:     email,
		Shipping:  shipping,
		Items:     items,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewOrderID() string {
	return "ord_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
