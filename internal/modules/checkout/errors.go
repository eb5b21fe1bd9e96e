package checkout

import "errors"

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidShippingOption  = errors.New("invalid shipping option")
	ErrShippingOptionNotFound = errors.New("shipping option not found")
	ErrOrderAlreadyPlaced     = errors.New("order with this guid already placed")
)

const (
	msgCartSetupFailed  = "An error occurred setting up your cart for PayPal."
	msgMinOrderInterval = "Please wait several seconds before placing a new order (already placed another order recently)."
	msgShippingRequired = "Shipping method is not selected."
	msgCartEmpty        = "Your shopping cart is empty."
	msgProviderDown     = "PayPal could not be reached. Please try again later."
)
