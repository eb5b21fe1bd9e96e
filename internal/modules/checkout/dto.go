package checkout

type ShippingMethodModel struct {
	Name                          string  `json:"name"`
	Description                   string  `json:"description,omitempty"`
	Fee                           float64 `json:"fee"`
	ShippingRateComputationMethod string  `json:"shipping_rate_computation_method"`
	Value                         string  `json:"value"`
	Selected                      bool    `json:"selected"`
}

type ShippingMethodsResponse struct {
	RequiresShipping bool                  `json:"requires_shipping"`
	Options          []ShippingMethodModel `json:"options"`
}

type SetShippingMethodRequest struct {
	ShippingOption string `form:"shippingoption" binding:"required"`
}

type ConfirmResponse struct {
	Error         string  `json:"error,omitempty"`
	Token         string  `json:"token,omitempty"`
	OrderGUID     string  `json:"order_guid,omitempty"`
	ItemTotal     float64 `json:"item_total"`
	ShippingTotal float64 `json:"shipping_total"`
	OrderTotal    float64 `json:"order_total"`
	Currency      string  `json:"currency"`
	ShippingName  string  `json:"shipping_method,omitempty"`
}

type PlaceOrderResponse struct {
	Redirected bool   `json:"redirected,omitempty"`
	OrderID    *int64 `json:"order_id,omitempty"`
}
