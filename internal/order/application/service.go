package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pcamara21/Checkout-Backend/internal/order/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrPaymentNotRequired is returned by AttemptCharge when the order is already
// being paid or already settled. The pay endpoint maps it to 403; the webhook
// dispatcher swallows it and acknowledges.
var ErrPaymentNotRequired = errors.New("order does not need payment")

// Service reconciles order status against charge outcomes. It is invoked from
// two independent triggers, the synchronous pay request and the asynchronous
// webhook, which may race for the same order. The status guard is a fast path
// only; the actual double-charge protection is the idempotency key passed to
// the gateway, which is always the order ID.
type Service struct {
	log     *slog.Logger
	store   OrderStore
	gateway PaymentGateway
	pricer  SKUPricer
	tracer  trace.Tracer
}

func NewService(log *slog.Logger, store OrderStore, gateway PaymentGateway, pricer SKUPricer) *Service {
	return &Service{
		log:     log,
		store:   store,
		gateway: gateway,
		pricer:  pricer,
		tracer:  otel.Tracer("order-service"),
	}
}

type CreateOrderParams struct {
	Currency     string
	Items        []domain.Item
	Email        string
	Shipping     domain.Shipping
	CreateIntent bool
}

// CreateOrder prices the requested items against the catalog and persists a
// new order. With CreateIntent set it also opens a payment intent at the
// gateway (back-referencing the order through the intent's metadata) and moves
// the order straight to pending; the intent is then settled exclusively by
// payment_intent webhooks.
func (s *Service) CreateOrder(ctx context.Context, p CreateOrderParams) (domain.Order, *PaymentIntent, error) {
	ctx, span := s.tracer.Start(ctx, "CreateOrder")
	defer span.End()

	items := make([]domain.Item, 0, len(p.Items))
	for _, item := range p.Items {
		amount, err := s.pricer.UnitAmount(item.Parent)
		if err != nil {
			return domain.Order{}, nil, err
		}
		item.UnitAmount = amount
		items = append(items, item)
	}

	o := domain.NewOrder(p.Currency, p.Email, p.Shipping, items)
	if err := s.store.Create(ctx, o); err != nil {
		return domain.Order{}, nil, err
	}
	span.SetAttributes(attribute.String("order.id", o.ID))

	if !p.CreateIntent {
		return o, nil, nil
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, o.Amount, o.Currency, o.ID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	o, err = s.store.UpdateStatus(ctx, o.ID, domain.StatusPending)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return o, &intent, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.store.Get(ctx, id)
}

// AttemptCharge runs the attempt-charge flow for the given order and source.
// Exactly one charge-creation call is issued per invocation that passes both
// guards, always carrying the order ID as idempotency key so that concurrent
// triggers collapse into a single charge at the gateway.
//
// Gateway declines are business outcomes, not errors: they are persisted as
// status "failed" and the updated order is returned with a nil error. Only
// infrastructural faults (store unavailable) surface as errors.
func (s *Service) AttemptCharge(ctx context.Context, orderID string, src SourceRef) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "AttemptCharge")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !order.Status.NeedsPayment() {
		return order, ErrPaymentNotRequired
	}
	if src.Status != SourceStatusChargeable {
		// Nothing to charge with yet; the order is returned untouched.
		return order, nil
	}

	charge, err := s.gateway.CreateCharge(ctx, ChargeParams{
		SourceID:       src.ID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		ReceiptEmail:   order.Email,
		IdempotencyKey: order.ID,
	})

	var status domain.Status
	switch {
	case err != nil:
		s.log.Warn("charge creation failed", "order_id", order.ID, "source_id", src.ID, "err", err)
		status = domain.StatusFailed
	case charge.Status == ChargeStatusSucceeded:
		status = domain.StatusPaid
	default:
		// Pass the gateway's charge status through verbatim.
		status = domain.Status(charge.Status)
	}

	// The write happens for every outcome, including declines, so the
	// terminal-state invariant guards out any later trigger.
	return s.store.UpdateStatus(ctx, order.ID, status)
}

// MarkPaid records an externally confirmed payment, e.g. a
// payment_intent.succeeded or charge.succeeded notification. It applies
// regardless of the order's prior status being pending.
func (s *Service) MarkPaid(ctx context.Context, orderID string) (domain.Order, error) {
	return s.transition(ctx, orderID, domain.StatusPaid)
}

// MarkFailed records an externally reported payment failure.
func (s *Service) MarkFailed(ctx context.Context, orderID string) (domain.Order, error) {
	return s.transition(ctx, orderID, domain.StatusFailed)
}

func (s *Service) transition(ctx context.Context, orderID string, status domain.Status) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "TransitionOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID), attribute.String("order.status", string(status)))

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status.Terminal() {
		// Late or duplicate notification for a settled order; keep the sink.
		return order, nil
	}
	return s.store.UpdateStatus(ctx, orderID, status)
}
