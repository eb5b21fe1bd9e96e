package checkout

import (
	"math"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/paypal"
)

// paymentDetails describes cart plus the shipping charge the way PayPal expects it.
// Tax is not itemized.
func paymentDetails(cart domain.Cart, shipping float64, currency string) paypal.PaymentDetails {
	items := make([]paypal.PaymentItem, 0, len(cart))
	for _, item := range cart {
		items = append(items, paypal.PaymentItem{
			Name:     item.Name,
			Number:   item.SKU,
			Quantity: item.Quantity,
			Amount:   item.UnitPrice,
		})
	}
	itemTotal := cart.ItemTotal()
	return paypal.PaymentDetails{
		OrderTotal:    round2(itemTotal + shipping),
		ItemTotal:     itemTotal,
		ShippingTotal: shipping,
		Currency:      currency,
		Items:         items,
	}
}

// maxAmount is the highest total the buyer might be charged once shipping is chosen.
func maxAmount(cart domain.Cart, options []domain.ShippingOption) float64 {
	var highest float64
	for _, o := range options {
		if o.Rate > highest {
			highest = o.Rate
		}
	}
	return round2(cart.ItemTotal() + highest)
}

func shippingFlags(cart domain.Cart, requireConfirmed bool) (reqConfirm, noShipping string) {
	if !cart.RequiresShipping() {
		return "0", "2"
	}
	if !requireConfirmed {
		return "0", "1"
	}
	return "1", "1"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
