package domain

import "time"

type PaymentAction string

const (
	PaymentActionAuthorization PaymentAction = "Authorization"
	PaymentActionSale          PaymentAction = "Sale"
)

// PayPalSettings is the merchant configuration of the Express Checkout integration.
// A single row is kept; ID is always 1.
type PayPalSettings struct {
	ID                          int64         `gorm:"primaryKey" json:"-"`
	IsLive                      bool          `json:"is_live"`
	APIUsername                 string        `gorm:"type:varchar(255)" json:"api_username"`
	APIPassword                 string        `gorm:"type:varchar(255)" json:"-"`
	APISignature                string        `gorm:"type:varchar(255)" json:"-"`
	EmailAddress                string        `gorm:"type:varchar(255)" json:"email_address"`
	LocaleCode                  string        `gorm:"type:varchar(10)" json:"locale_code"`
	PaymentAction               PaymentAction `gorm:"type:varchar(20)" json:"payment_action"`
	LogoImageURL                string        `gorm:"type:text" json:"logo_image_url"`
	CartBorderColor             string        `gorm:"type:varchar(6)" json:"cart_border_color"`
	RequireConfirmedShipping    bool          `json:"require_confirmed_shipping"`
	EnableDebugLogging          bool          `json:"enable_debug_logging"`
	MinOrderPlacementInterval   int           `json:"min_order_placement_interval"`
	RegenerateOrderGUIDInterval int           `json:"regenerate_order_guid_interval"`
	UpdatedAt                   time.Time     `json:"updated_at"`
}

func (PayPalSettings) TableName() string { return "paypal_settings" }

func (s PayPalSettings) MinOrderInterval() time.Duration {
	return time.Duration(s.MinOrderPlacementInterval) * time.Second
}

func (s PayPalSettings) GUIDRegenerationInterval() time.Duration {
	return time.Duration(s.RegenerateOrderGUIDInterval) * time.Second
}
