package payment

import "paypalexpress/internal/domain"

type RefundRequest struct {
	// Amount of zero refunds everything that is left.
	Amount float64 `json:"amount" binding:"gte=0" example:"10.00"`
}

type OrderDetailsResponse struct {
	Order             *domain.Order             `json:"order"`
	RecurringPayments []domain.RecurringPayment `json:"recurring_payments"`
}
