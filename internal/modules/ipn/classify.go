package ipn

import (
	"strings"

	"github.com/google/uuid"
)

// Transaction is the kind of IPN delivery. It is implemented only by the types below.
type Transaction interface {
	isTransaction()
}

// ProfileCreated acknowledges a new recurring profile. No state changes.
type ProfileCreated struct{}

// RecurringPayment is a billing cycle of a profile created for the order ProfileGUID.
type RecurringPayment struct {
	ProfileGUID uuid.UUID
}

// OneTime is any other payment event, correlated through the custom field.
type OneTime struct {
	OrderGUID uuid.UUID
}

func (ProfileCreated) isTransaction()   {}
func (RecurringPayment) isTransaction() {}
func (OneTime) isTransaction()          {}

func Classify(fields Fields) Transaction {
	switch fields.Get("txn_type") {
	case "recurring_payment_profile_created":
		return ProfileCreated{}
	case "recurring_payment":
		return RecurringPayment{ProfileGUID: parseGUID(fields.Get("rp_invoice_id"))}
	default:
		return OneTime{OrderGUID: parseGUID(fields.Get("custom"))}
	}
}

func parseGUID(v string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return uuid.Nil
	}
	return id
}
