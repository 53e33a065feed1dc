package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pcamara21/Checkout-Backend/internal/order/application"
	"github.com/pcamara21/Checkout-Backend/internal/order/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrBadSignature marks a notification whose signature did not verify. It is
// the only dispatch outcome the HTTP layer reports as a client error; every
// other handled outcome acknowledges the delivery.
var ErrBadSignature = errors.New("webhook signature verification failed")

// Verifier checks a raw payload against its signature header and parses it.
// Implemented by the gateway client when a shared webhook secret is
// configured.
type Verifier interface {
	VerifyEvent(payload []byte, sigHeader string) (Event, error)
}

// Deduper drops duplicate deliveries of the same event.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
}

// Reconciler is the slice of the order service the dispatcher drives.
type Reconciler interface {
	AttemptCharge(ctx context.Context, orderID string, src application.SourceRef) (domain.Order, error)
	MarkPaid(ctx context.Context, orderID string) (domain.Order, error)
	MarkFailed(ctx context.Context, orderID string) (domain.Order, error)
}

// Dispatcher classifies inbound payment notifications by object kind and
// status and routes them to the reconciler.
type Dispatcher struct {
	log      *slog.Logger
	verifier Verifier // nil when no webhook secret is configured
	dedup    Deduper  // nil disables delivery dedup
	rec      Reconciler
	tracer   trace.Tracer
}

func NewDispatcher(log *slog.Logger, verifier Verifier, dedup Deduper, rec Reconciler) *Dispatcher {
	return &Dispatcher{
		log:      log,
		verifier: verifier,
		dedup:    dedup,
		rec:      rec,
		tracer:   otel.Tracer("webhook-dispatcher"),
	}
}

// Dispatch verifies, classifies, and processes one notification delivery.
// A nil return means the delivery is acknowledged. ErrBadSignature means the
// payload was rejected unprocessed. Any other error is an infrastructural
// fault; the HTTP layer surfaces those as 5xx so the gateway redelivers.
func (d *Dispatcher) Dispatch(ctx context.Context, payload []byte, sigHeader string) error {
	ctx, span := d.tracer.Start(ctx, "DispatchWebhook")
	defer span.End()

	var event Event
	if d.verifier != nil {
		var err error
		event, err = d.verifier.VerifyEvent(payload, sigHeader)
		if err != nil {
			d.log.Warn("webhook signature verification failed", "err", err)
			return fmt.Errorf("%w: %w", ErrBadSignature, err)
		}
	} else {
		// Signing is not configured; trust the payload's declared type.
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("%w: malformed payload: %w", ErrBadSignature, err)
		}
	}
	span.SetAttributes(attribute.String("event.id", event.ID), attribute.String("event.type", event.Type))

	if d.dedup != nil && event.ID != "" {
		seen, err := d.dedup.Seen(ctx, event.ID)
		if err != nil {
			return err
		}
		if seen {
			d.log.Info("duplicate webhook delivery skipped", "event_id", event.ID)
			return nil
		}
	}

	return d.process(ctx, event)
}

func (d *Dispatcher) process(ctx context.Context, event Event) error {
	object := event.Data.Object

	switch {
	case object.Kind == KindPaymentIntent:
		return d.handlePaymentIntent(ctx, event.Type, object)

	case object.Kind == KindSource && object.Status == application.SourceStatusChargeable:
		orderID := object.OrderID()
		if orderID == "" {
			return nil
		}
		d.log.Info("source chargeable", "source_id", object.ID, "order_id", orderID)
		_, err := d.rec.AttemptCharge(ctx, orderID, application.SourceRef{ID: object.ID, Status: object.Status})
		if errors.Is(err, application.ErrPaymentNotRequired) {
			// Already being paid or settled; acknowledge silently.
			return nil
		}
		return err

	case object.Kind == KindCharge && object.Status == application.ChargeStatusSucceeded:
		if object.Source == nil || object.Source.OrderID() == "" {
			return nil
		}
		d.log.Info("charge succeeded", "charge_id", object.ID, "order_id", object.Source.OrderID())
		_, err := d.rec.MarkPaid(ctx, object.Source.OrderID())
		return err

	case (object.Kind == KindSource || object.Kind == KindCharge) &&
		(object.Status == "failed" || object.Status == "canceled"):
		source := object
		if object.Source != nil {
			source = *object.Source
		}
		if source.OrderID() == "" {
			return nil
		}
		d.log.Info("payment failure", "object_id", object.ID, "status", object.Status, "order_id", source.OrderID())
		_, err := d.rec.MarkFailed(ctx, source.OrderID())
		return err
	}

	// Unrecognized or unassociated objects are acknowledged and ignored.
	return nil
}

func (d *Dispatcher) handlePaymentIntent(ctx context.Context, eventType string, intent Object) error {
	orderID := intent.OrderID()
	if orderID == "" {
		return nil
	}
	switch eventType {
	case EventPaymentIntentSucceeded:
		d.log.Info("payment intent succeeded", "intent_id", intent.ID, "order_id", orderID)
		_, err := d.rec.MarkPaid(ctx, orderID)
		return err
	case EventPaymentIntentFailed:
		if intent.LastPaymentError != nil {
			d.log.Info("payment intent failed", "intent_id", intent.ID, "order_id", orderID, "reason", intent.LastPaymentError.Message)
		} else {
			d.log.Info("payment intent failed", "intent_id", intent.ID, "order_id", orderID)
		}
		_, err := d.rec.MarkFailed(ctx, orderID)
		return err
	}
	return nil
}
