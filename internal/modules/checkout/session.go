package checkout

import (
	"time"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/staging"
)

// Session identifies the buyer a checkout step runs for. ID keys all staged state.
type Session struct {
	ID         string
	CustomerID int64
	StoreID    int64
}

// State holds the per-session values kept between checkout steps.
type State struct {
	Requests *staging.Store[domain.PendingPaymentRequest]
	Errors   *staging.Store[string]
	Offered  *staging.Store[[]domain.ShippingOption]
	Selected *staging.Store[domain.ShippingOption]
}

func NewState(ttl time.Duration) *State {
	return &State{
		Requests: staging.NewStore[domain.PendingPaymentRequest](ttl),
		Errors:   staging.NewStore[string](ttl),
		Offered:  staging.NewStore[[]domain.ShippingOption](ttl),
		Selected: staging.NewStore[domain.ShippingOption](ttl),
	}
}

// Register adds every store to the sweeper.
func (s *State) Register(sw *staging.Sweeper) {
	sw.Register("payment_requests", s.Requests)
	sw.Register("checkout_errors", s.Errors)
	sw.Register("shipping_offered", s.Offered)
	sw.Register("shipping_selected", s.Selected)
}

// TakeError returns the flash error of the session once.
func (s *State) TakeError(sessionID string) string {
	msg, _ := s.Errors.TakeOnce(sessionID)
	return msg
}
