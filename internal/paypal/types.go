package paypal

import (
	"strings"
	"time"
)

type Ack string

const (
	AckSuccess            Ack = "Success"
	AckSuccessWithWarning Ack = "SuccessWithWarning"
	AckFailure            Ack = "Failure"
	AckFailureWithWarning Ack = "FailureWithWarning"
)

type APIError struct {
	ErrorCode    string `json:"error_code"`
	ShortMessage string `json:"short_message"`
	LongMessage  string `json:"long_message"`
	SeverityCode string `json:"severity_code,omitempty"`
}

func (e APIError) Error() string {
	return e.ErrorCode + ": " + e.LongMessage
}

// String renders the error the way it is surfaced in placement warnings.
func (e APIError) String() string {
	var sb strings.Builder
	sb.WriteString("LongMessage: ")
	sb.WriteString(e.LongMessage)
	sb.WriteString("\nShortMessage: ")
	sb.WriteString(e.ShortMessage)
	sb.WriteString("\nErrorCode: ")
	sb.WriteString(e.ErrorCode)
	sb.WriteString("\n")
	return sb.String()
}

// Response carries the envelope fields every NVP call returns.
type Response struct {
	Ack           Ack        `json:"ack"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Timestamp     string     `json:"timestamp,omitempty"`
	Version       string     `json:"version,omitempty"`
	Build         string     `json:"build,omitempty"`
	Errors        []APIError `json:"errors,omitempty"`
}

func (r Response) Succeeded() bool {
	return r.Ack == AckSuccess || r.Ack == AckSuccessWithWarning
}

func (r Response) ErrorStrings() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.String())
	}
	return out
}

type PaymentItem struct {
	Name     string  `json:"name"`
	Number   string  `json:"number,omitempty"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

type PaymentDetails struct {
	OrderTotal    float64       `json:"order_total"`
	ItemTotal     float64       `json:"item_total"`
	ShippingTotal float64       `json:"shipping_total"`
	TaxTotal      float64       `json:"tax_total"`
	Currency      string        `json:"currency"`
	PaymentAction string        `json:"payment_action,omitempty"`
	Custom        string        `json:"custom,omitempty"`
	InvoiceID     string        `json:"invoice_id,omitempty"`
	Items         []PaymentItem `json:"items,omitempty"`
}

type SetExpressCheckoutRequest struct {
	ReturnURL          string
	CancelURL          string
	ReqConfirmShipping string
	NoShipping         string
	LocaleCode         string
	HeaderImage        string
	CartBorderColor    string
	BuyerEmail         string
	MaxAmount          float64
	ButtonSource       string
	PaymentDetails     PaymentDetails
}

type SetExpressCheckoutResponse struct {
	Response
	Token string `json:"token"`
}

type Address struct {
	Name        string `json:"name,omitempty"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
}

type PayerInfo struct {
	PayerID      string  `json:"payer_id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	ContactPhone string  `json:"contact_phone,omitempty"`
	PayerStatus  string  `json:"payer_status,omitempty"`
	Address      Address `json:"address"`
}

type GetExpressCheckoutDetailsResponse struct {
	Response
	Token     string    `json:"token"`
	PayerInfo PayerInfo `json:"payer_info"`
	ShipTo    Address   `json:"ship_to"`
	Custom    string    `json:"custom,omitempty"`
	InvoiceID string    `json:"invoice_id,omitempty"`
}

type DoExpressCheckoutPaymentRequest struct {
	Token          string
	PayerID        string
	PaymentAction  string
	ButtonSource   string
	PaymentDetails PaymentDetails
}

type PaymentInfo struct {
	TransactionID string  `json:"transaction_id"`
	PaymentStatus string  `json:"payment_status"`
	PendingReason string  `json:"pending_reason,omitempty"`
	Amount        float64 `json:"amount"`
}

type DoExpressCheckoutPaymentResponse struct {
	Response
	Token       string        `json:"token"`
	PaymentInfo []PaymentInfo `json:"payment_info"`
}

type DoCaptureRequest struct {
	AuthorizationID string
	Amount          float64
	Currency        string
	CompleteType    string
	InvoiceID       string
	MsgSubID        string
}

type DoCaptureResponse struct {
	Response
	AuthorizationID string `json:"authorization_id"`
	TransactionID   string `json:"transaction_id"`
	PaymentStatus   string `json:"payment_status"`
}

type RefundTransactionRequest struct {
	TransactionID string
	RefundType    string
	Amount        float64
	Currency      string
	MsgSubID      string
}

type RefundTransactionResponse struct {
	Response
	RefundTransactionID string  `json:"refund_transaction_id"`
	GrossRefundAmount   float64 `json:"gross_refund_amount"`
}

type DoVoidRequest struct {
	AuthorizationID string
	MsgSubID        string
}

type DoVoidResponse struct {
	Response
	AuthorizationID string `json:"authorization_id"`
}

type CreateRecurringPaymentsProfileRequest struct {
	Token              string
	ProfileStartDate   time.Time
	ProfileReference   string
	Description        string
	BillingPeriod      string
	BillingFrequency   int
	TotalBillingCycles int
	Amount             float64
	Currency           string
}

type CreateRecurringPaymentsProfileResponse struct {
	Response
	ProfileID     string `json:"profile_id"`
	ProfileStatus string `json:"profile_status"`
}

type ManageRecurringPaymentsProfileStatusRequest struct {
	ProfileID string
	Action    string
	Note      string
}

type ManageRecurringPaymentsProfileStatusResponse struct {
	Response
	ProfileID string `json:"profile_id"`
}
