package settings

import "paypalexpress/internal/domain"

type UpdateSettingsRequest struct {
	IsLive                      bool    `json:"is_live"`
	APIUsername                 string  `json:"api_username" validate:"max=255"`
	APIPassword                 *string `json:"api_password,omitempty" validate:"omitempty,max=255"`
	APISignature                *string `json:"api_signature,omitempty" validate:"omitempty,max=255"`
	EmailAddress                string  `json:"email_address" validate:"omitempty,email"`
	LocaleCode                  string  `json:"locale_code" validate:"required,paypal_locale"`
	PaymentAction               string  `json:"payment_action" validate:"required,oneof=Authorization Sale"`
	LogoImageURL                string  `json:"logo_image_url" validate:"max=2048"`
	CartBorderColor             string  `json:"cart_border_color" validate:"omitempty,len=6,hexadecimal"`
	RequireConfirmedShipping    bool    `json:"require_confirmed_shipping"`
	EnableDebugLogging          bool    `json:"enable_debug_logging"`
	MinOrderPlacementInterval   int     `json:"min_order_placement_interval" validate:"gte=0"`
	RegenerateOrderGUIDInterval int     `json:"regenerate_order_guid_interval" validate:"gte=0"`
}

type SettingsResponse struct {
	domain.PayPalSettings
	HasAPIPassword  bool `json:"has_api_password"`
	HasAPISignature bool `json:"has_api_signature"`
}

type OptionsResponse struct {
	PaymentActions []Option `json:"payment_actions"`
	Locales        []Option `json:"locales"`
}

func toResponse(s domain.PayPalSettings) SettingsResponse {
	return SettingsResponse{
		PayPalSettings:  s,
		HasAPIPassword:  s.APIPassword != "",
		HasAPISignature: s.APISignature != "",
	}
}
