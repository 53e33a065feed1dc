package catalog

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFixtures() *Fixtures {
	return NewFixtures(slog.New(slog.NewTextHandler(io.Discard, nil)), "usd")
}

func TestSetupSeedsFixtures(t *testing.T) {
	f := testFixtures()
	products, err := f.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "increment", products[0].ID)
	assert.Equal(t, "pins", products[1].ID)
	assert.Equal(t, "shirt", products[2].ID)
}

func TestSetupIsSingleFlight(t *testing.T) {
	f := testFixtures()

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.Setup(context.Background()))
		}()
	}
	wg.Wait()

	products, err := f.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3, "concurrent setup must seed exactly once")
}

func TestUnitAmount(t *testing.T) {
	f := testFixtures()

	price, err := f.UnitAmount("shirt-small-woman")
	require.NoError(t, err)
	assert.Equal(t, int64(999), price)

	_, err = f.UnitAmount("missing")
	assert.ErrorIs(t, err, ErrUnknownSKU)
}

func TestProductLookup(t *testing.T) {
	f := testFixtures()

	p, ok, err := f.Product(context.Background(), "pins")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Stripe Pins", p.Name)

	_, ok, err = f.Product(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBanksSortedByDisplayName(t *testing.T) {
	banks := Banks()
	require.Len(t, banks, 22)
	for i := 1; i < len(banks); i++ {
		assert.LessOrEqual(t,
			strings.ToUpper(banks[i-1].DisplayName),
			strings.ToUpper(banks[i].DisplayName))
	}
}

func TestBankLookup(t *testing.T) {
	b, ok := Bank("BCBB0235")
	require.True(t, ok)
	assert.Equal(t, "CIMB Clicks", b.DisplayName)

	_, ok = Bank("XXX")
	assert.False(t, ok)
}
