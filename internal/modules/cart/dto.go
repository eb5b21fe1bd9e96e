package cart

import "paypalexpress/internal/domain"

type AddItemRequest struct {
	SKU        string  `json:"sku" validate:"required,max=100"`
	Name       string  `json:"name" validate:"required,max=255"`
	Quantity   int     `json:"quantity" validate:"required,gte=1,lte=10000"`
	UnitPrice  float64 `json:"unit_price" validate:"gte=0"`
	IsDownload bool    `json:"is_download"`

	IsRecurring          bool   `json:"is_recurring"`
	RecurringCycleLength int    `json:"recurring_cycle_length" validate:"required_if=IsRecurring true,gte=0"`
	RecurringCyclePeriod string `json:"recurring_cycle_period" validate:"required_if=IsRecurring true"`
	RecurringTotalCycles int    `json:"recurring_total_cycles" validate:"gte=0"`
}

type CartResponse struct {
	Items            []domain.CartItem `json:"items"`
	ItemTotal        float64           `json:"item_total"`
	RequiresShipping bool              `json:"requires_shipping"`
}
