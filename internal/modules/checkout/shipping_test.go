package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paypalexpress/internal/domain"
)

func TestParseOptionKey(t *testing.T) {
	tests := []struct {
		raw    string
		name   string
		method string
		ok     bool
	}{
		{"Ground___Shipping.FixedRate", "Ground", "Shipping.FixedRate", true},
		{"___Ground___Shipping.FixedRate___", "Ground", "Shipping.FixedRate", true},
		{"Ground", "", "", false},
		{"a___b___c", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, method, ok := parseOptionKey(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.method, method)
		})
	}
}

func TestFixedRateProviderSkipsDownloads(t *testing.T) {
	p := NewFixedRateProvider(testRates)

	options, err := p.ShippingOptions(context.Background(), domain.Cart{ebook})
	require.NoError(t, err)
	assert.Empty(t, options)

	options, err = p.ShippingOptions(context.Background(), domain.Cart{shirt})
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Ground___Shipping.FixedRate", options[0].Key())
}

func TestShippingOptionsSelection(t *testing.T) {
	s := NewShipping(NewFixedRateProvider(testRates), NewState(time.Hour))
	sess := Session{ID: "s"}
	cart := domain.Cart{shirt}
	ctx := context.Background()

	models, err := s.ShippingOptions(ctx, sess, cart)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.True(t, models[0].Selected)
	assert.False(t, models[1].Selected)

	selected, err := s.SelectShippingOption(ctx, sess, cart, "next day air___shipping.fixedrate")
	require.NoError(t, err)
	assert.Equal(t, "Next Day Air", selected.Name)
	assert.Equal(t, 25.0, selected.Rate)

	models, err = s.ShippingOptions(ctx, sess, cart)
	require.NoError(t, err)
	assert.False(t, models[0].Selected)
	assert.True(t, models[1].Selected)

	s.ClearShippingOption(sess)
	_, ok := s.Selected(sess)
	assert.False(t, ok)
}

func TestSelectShippingOptionWithoutCache(t *testing.T) {
	s := NewShipping(NewFixedRateProvider(testRates), NewState(time.Hour))
	sess := Session{ID: "s"}

	selected, err := s.SelectShippingOption(context.Background(), sess, domain.Cart{shirt}, "Ground___Shipping.FixedRate")
	require.NoError(t, err)
	assert.Equal(t, "Ground", selected.Name)

	_, err = s.SelectShippingOption(context.Background(), sess, domain.Cart{shirt}, "Pigeon___Shipping.FixedRate")
	assert.ErrorIs(t, err, ErrShippingOptionNotFound)

	_, err = s.SelectShippingOption(context.Background(), sess, domain.Cart{shirt}, "Ground")
	assert.ErrorIs(t, err, ErrInvalidShippingOption)

	current, ok := s.Selected(sess)
	require.True(t, ok)
	assert.Equal(t, "Ground", current.Name)
}

func TestShippingFlags(t *testing.T) {
	reqConfirm, noShipping := shippingFlags(domain.Cart{ebook}, true)
	assert.Equal(t, "0", reqConfirm)
	assert.Equal(t, "2", noShipping)

	reqConfirm, noShipping = shippingFlags(domain.Cart{shirt}, false)
	assert.Equal(t, "0", reqConfirm)
	assert.Equal(t, "1", noShipping)

	reqConfirm, noShipping = shippingFlags(domain.Cart{shirt, ebook}, true)
	assert.Equal(t, "1", reqConfirm)
	assert.Equal(t, "1", noShipping)
}

func TestPaymentDetailsAndMaxAmount(t *testing.T) {
	cart := domain.Cart{shirt, ebook}

	d := paymentDetails(cart, 5, "USD")
	assert.Equal(t, 39.99, d.ItemTotal)
	assert.Equal(t, 5.0, d.ShippingTotal)
	assert.Equal(t, 44.99, d.OrderTotal)
	assert.Zero(t, d.TaxTotal)
	require.Len(t, d.Items, 2)
	assert.Equal(t, "TS-1", d.Items[0].Number)
	assert.Equal(t, 2, d.Items[0].Quantity)
	assert.Equal(t, 15.0, d.Items[0].Amount)

	assert.Equal(t, 64.99, maxAmount(cart, []domain.ShippingOption{{Rate: 5}, {Rate: 25}}))
	assert.Equal(t, 39.99, maxAmount(cart, nil))
}
