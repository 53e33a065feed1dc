package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

var ErrUnknownSKU = errors.New("unknown sku")

type Product struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Attributes []string `json:"attributes"`
}

type SKU struct {
	ID         string            `json:"id"`
	Product    string            `json:"product"`
	Attributes map[string]string `json:"attributes"`
	Price      int64             `json:"price"`
	Currency   string            `json:"currency"`
	Inventory  Inventory         `json:"inventory"`
}

type Inventory struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity,omitempty"`
}

// Fixtures is the demo product catalog. The fixture set is created lazily on
// first use; creation is single-flight, so concurrent first callers all await
// the one seeding pass and share its result for the process lifetime.
type Fixtures struct {
	log      *slog.Logger
	currency string

	setup atomic.Pointer[setupTask]

	mu       sync.RWMutex
	products map[string]Product
	skus     map[string]SKU
}

type setupTask struct {
	done chan struct{}
	err  error
}

func NewFixtures(log *slog.Logger, currency string) *Fixtures {
	return &Fixtures{
		log:      log,
		currency: currency,
		products: make(map[string]Product),
		skus:     make(map[string]SKU),
	}
}

// Setup seeds the fixture products and SKUs. The first caller runs the
// seeding; everyone else blocks on the same task handle and returns its
// result.
func (f *Fixtures) Setup(ctx context.Context) error {
	task := &setupTask{done: make(chan struct{})}
	if !f.setup.CompareAndSwap(nil, task) {
		task = f.setup.Load()
		select {
		case <-task.done:
			return task.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	task.err = f.seed()
	close(task.done)
	if task.err == nil {
		f.log.Info("catalog setup complete")
	}
	return task.err
}

func (f *Fixtures) seed() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	add := func(p Product, skus ...SKU) {
		f.products[p.ID] = p
		for _, s := range skus {
			s.Currency = f.currency
			f.skus[s.ID] = s
		}
	}

	add(
		Product{ID: "increment", Name: "Increment Magazine", Type: "good", Attributes: []string{"issue"}},
		SKU{ID: "increment-03", Product: "increment", Attributes: map[string]string{"issue": "Issue #3 “Development”"}, Price: 399, Inventory: Inventory{Type: "infinite"}},
	)
	add(
		Product{ID: "shirt", Name: "Stripe Shirt", Type: "good", Attributes: []string{"size", "gender"}},
		SKU{ID: "shirt-small-woman", Product: "shirt", Attributes: map[string]string{"size": "Small Standard", "gender": "Woman"}, Price: 999, Inventory: Inventory{Type: "infinite"}},
	)
	add(
		Product{ID: "pins", Name: "Stripe Pins", Type: "good", Attributes: []string{"set"}},
		SKU{ID: "pins-collector", Product: "pins", Attributes: map[string]string{"set": "Collector Set"}, Price: 799, Inventory: Inventory{Type: "finite", Quantity: 500}},
	)
	return nil
}

// List returns all products, seeding the fixtures first if needed.
func (f *Fixtures) List(ctx context.Context) ([]Product, error) {
	if err := f.Setup(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fixtures) Product(ctx context.Context, id string) (Product, bool, error) {
	if err := f.Setup(ctx); err != nil {
		return Product{}, false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.products[id]
	return p, ok, nil
}

// UnitAmount resolves a SKU to its price in minor units. Implements the order
// service's pricer port.
func (f *Fixtures) UnitAmount(skuID string) (int64, error) {
	if err := f.Setup(context.Background()); err != nil {
		return 0, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	sku, ok := f.skus[skuID]
	if !ok {
		return 0, ErrUnknownSKU
	}
	return sku.Price, nil
}
