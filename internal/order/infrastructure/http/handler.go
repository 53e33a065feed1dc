package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pcamara21/Checkout-Backend/internal/catalog"
	"github.com/pcamara21/Checkout-Backend/internal/order/application"
	"github.com/pcamara21/Checkout-Backend/internal/order/domain"
	"github.com/pcamara21/Checkout-Backend/internal/webhook"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// PublicConfig is the client-facing configuration exposed on GET /config.
type PublicConfig struct {
	StripePublishableKey string `json:"stripePublishableKey"`
	StripeCountry        string `json:"stripeCountry"`
	Country              string `json:"country"`
	Currency             string `json:"currency"`
}

type Handler struct {
	log        *slog.Logger
	service    *application.Service
	dispatcher *webhook.Dispatcher
	catalog    *catalog.Fixtures
	cfg        PublicConfig
	tracer     trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, dispatcher *webhook.Dispatcher, cat *catalog.Fixtures, cfg PublicConfig) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		dispatcher: dispatcher,
		catalog:    cat,
		cfg:        cfg,
		tracer:     otel.Tracer("checkout-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/pay", h.payOrder)
	r.Post("/webhook", h.handleWebhook)
	r.Get("/config", h.getConfig)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/fpx/banks", h.listBanks)
	r.Post("/fpx/source", h.createFpxSource)
	return r
}

type createOrderReq struct {
	Currency     string          `json:"currency"`
	Items        []domain.Item   `json:"items"`
	Email        string          `json:"email"`
	Shipping     domain.Shipping `json:"shipping"`
	CreateIntent bool            `json:"createIntent"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	order, intent, err := h.service.CreateOrder(ctx, application.CreateOrderParams{
		Currency:     req.Currency,
		Items:        req.Items,
		Email:        req.Email,
		Shipping:     req.Shipping,
		CreateIntent: req.CreateIntent,
	})
	if errors.Is(err, catalog.ErrUnknownSKU) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error("create order failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{"order": order}
	if intent != nil {
		resp["paymentIntent"] = intent
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type payOrderReq struct {
	Source application.SourceRef `json:"source"`
}

// payOrder runs the synchronous half of the reconciliation. A guard rejection
// comes back as 403 with the untouched order; a gateway decline is still a
// 200, with the order marked failed.
func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PayOrder")
	defer span.End()

	var req payOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	order, err := h.service.AttemptCharge(ctx, chi.URLParam(r, "id"), req.Source)
	switch {
	case errors.Is(err, application.ErrPaymentNotRequired):
		writeJSON(w, http.StatusForbidden, map[string]any{"order": order, "source": req.Source})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case err != nil:
		h.log.Error("pay order failed", "order_id", chi.URLParam(r, "id"), "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]any{"order": order, "source": req.Source})
	}
}

// handleWebhook acknowledges every handled delivery with a plain 200. Bad
// signatures are rejected with 400 and never processed. Infrastructural
// faults return 500 so the gateway redelivers the event.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Webhook")
	defer span.End()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	err = h.dispatcher.Dispatch(ctx, payload, r.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, webhook.ErrBadSignature):
		w.WriteHeader(http.StatusBadRequest)
	case err != nil:
		h.log.Error("webhook processing failed", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cfg)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, ok, err := h.catalog.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) listBanks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Banks())
}

type fpxSourceReq struct {
	Bank string `json:"bank"`
}

// createFpxSource returns a canned FPX source pointing at the demo auth page.
func (h *Handler) createFpxSource(w http.ResponseWriter, r *http.Request) {
	var req fpxSourceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	bank, ok := catalog.Bank(req.Bank)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown bank")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     "src_1234",
		"object": "source",
		"type":   "fpx",
		"fpx": map[string]string{
			"bank":      bank.NormalizeName,
			"reference": "1234455",
		},
		"redirect": map[string]string{
			"return_url": "/fpx",
			"url":        "/fpx/auth?client_secret=" + bank.ID + "&bank=" + bank.Name,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
