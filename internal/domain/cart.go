package domain

import "time"

type CartItem struct {
	ID         int64   `json:"id" gorm:"primaryKey"`
	CustomerID int64   `json:"customer_id" gorm:"index;not null"`
	StoreID    int64   `json:"store_id" gorm:"index"`
	SKU        string  `json:"sku" gorm:"type:varchar(100)"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	IsDownload bool    `json:"is_download"`

	IsRecurring          bool        `json:"is_recurring"`
	RecurringCycleLength int         `json:"recurring_cycle_length,omitempty"`
	RecurringCyclePeriod CyclePeriod `json:"recurring_cycle_period,omitempty" gorm:"type:varchar(10)"`
	RecurringTotalCycles int         `json:"recurring_total_cycles,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_items" }

func (i CartItem) LineTotal() float64 {
	return roundCents(i.UnitPrice * float64(i.Quantity))
}

type Cart []CartItem

// RequiresShipping is true when at least one item is a physical good.
func (c Cart) RequiresShipping() bool {
	for _, item := range c {
		if !item.IsDownload {
			return true
		}
	}
	return false
}

func (c Cart) ItemTotal() float64 {
	var total float64
	for _, item := range c {
		total += item.LineTotal()
	}
	return roundCents(total)
}

// Recurring returns the first recurring item, if any.
func (c Cart) Recurring() (CartItem, bool) {
	for _, item := range c {
		if item.IsRecurring {
			return item, true
		}
	}
	return CartItem{}, false
}

type ShippingOption struct {
	Name                          string  `json:"name"`
	Description                   string  `json:"description,omitempty"`
	Rate                          float64 `json:"rate"`
	ShippingRateComputationMethod string  `json:"shipping_rate_computation_method"`
}

// Key is the form value identifying the option, "name___method".
func (o ShippingOption) Key() string {
	return o.Name + "___" + o.ShippingRateComputationMethod
}
