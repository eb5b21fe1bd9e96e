package ipn

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	guid := uuid.New()

	assert.Equal(t, ProfileCreated{}, Classify(Fields{"txn_type": "recurring_payment_profile_created"}))
	assert.Equal(t, RecurringPayment{ProfileGUID: guid}, Classify(Fields{"txn_type": "recurring_payment", "rp_invoice_id": guid.String()}))
	assert.Equal(t, OneTime{OrderGUID: guid}, Classify(Fields{"txn_type": "express_checkout", "custom": guid.String()}))
	assert.Equal(t, OneTime{OrderGUID: guid}, Classify(Fields{"custom": guid.String()}))
	assert.Equal(t, OneTime{OrderGUID: uuid.Nil}, Classify(Fields{"custom": "not-a-guid"}))
	assert.Equal(t, RecurringPayment{ProfileGUID: uuid.Nil}, Classify(Fields{"txn_type": "recurring_payment"}))
}

func TestParseFields(t *testing.T) {
	f := ParseFields("Payment_Status=Completed&custom=abc&bare&first_name=J%C3%B6rg&note=a%ZZ&memo=one+two&k=v=w")

	assert.Equal(t, "Completed", f.Get("payment_status"))
	assert.Equal(t, "abc", f["custom"])
	assert.Equal(t, "Jörg", f["first_name"])
	assert.Equal(t, "a%ZZ", f["note"], "undecodable value is kept raw")
	assert.Equal(t, "one two", f["memo"])
	assert.Equal(t, "v=w", f["k"])
	_, ok := f["bare"]
	assert.False(t, ok)
}

func TestBuildNote(t *testing.T) {
	note := BuildNote(Fields{"txn_id": "T1", "custom": "g", "payment_status": "Completed"}, MapStatus("Completed", ""))

	assert.Equal(t, "Paypal IPN:\ncustom: g\npayment_status: Completed\ntxn_id: T1\nNew payment status: Paid", note)
}
