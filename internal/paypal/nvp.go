package paypal

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// nvp is the name-value request body of a single API call.
type nvp url.Values

func (v nvp) set(key, value string) {
	if value == "" {
		return
	}
	url.Values(v).Set(key, value)
}

func (v nvp) setAmount(key string, amount float64) {
	url.Values(v).Set(key, FormatAmount(amount))
}

func (v nvp) setInt(key string, n int) {
	url.Values(v).Set(key, strconv.Itoa(n))
}

func (v nvp) encode() string {
	return url.Values(v).Encode()
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func (v nvp) setPaymentDetails(d PaymentDetails) {
	const p = "PAYMENTREQUEST_0_"
	v.setAmount(p+"AMT", d.OrderTotal)
	v.setAmount(p+"ITEMAMT", d.ItemTotal)
	v.setAmount(p+"SHIPPINGAMT", d.ShippingTotal)
	v.setAmount(p+"TAXAMT", d.TaxTotal)
	v.set(p+"CURRENCYCODE", d.Currency)
	v.set(p+"PAYMENTACTION", d.PaymentAction)
	v.set(p+"CUSTOM", d.Custom)
	v.set(p+"INVNUM", d.InvoiceID)
	for i, item := range d.Items {
		v.set(fmt.Sprintf("L_%sNAME%d", p, i), item.Name)
		v.set(fmt.Sprintf("L_%sNUMBER%d", p, i), item.Number)
		v.setInt(fmt.Sprintf("L_%sQTY%d", p, i), item.Quantity)
		v.setAmount(fmt.Sprintf("L_%sAMT%d", p, i), item.Amount)
	}
}

// reply wraps a decoded NVP response body.
type reply url.Values

func decodeReply(body []byte) (reply, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("decode nvp response: %w", err)
	}
	if values.Get("ACK") == "" {
		return nil, fmt.Errorf("decode nvp response: missing ACK")
	}
	return reply(values), nil
}

func (r reply) get(key string) string {
	return url.Values(r).Get(key)
}

func (r reply) amount(key string) float64 {
	f, err := strconv.ParseFloat(r.get(key), 64)
	if err != nil {
		return 0
	}
	return f
}

func (r reply) envelope() Response {
	resp := Response{
		Ack:           Ack(r.get("ACK")),
		CorrelationID: r.get("CORRELATIONID"),
		Timestamp:     r.get("TIMESTAMP"),
		Version:       r.get("VERSION"),
		Build:         r.get("BUILD"),
	}
	for i := 0; ; i++ {
		code := r.get(fmt.Sprintf("L_ERRORCODE%d", i))
		if code == "" {
			break
		}
		resp.Errors = append(resp.Errors, APIError{
			ErrorCode:    code,
			ShortMessage: r.get(fmt.Sprintf("L_SHORTMESSAGE%d", i)),
			LongMessage:  r.get(fmt.Sprintf("L_LONGMESSAGE%d", i)),
			SeverityCode: r.get(fmt.Sprintf("L_SEVERITYCODE%d", i)),
		})
	}
	return resp
}

func (r reply) paymentInfo() []PaymentInfo {
	var out []PaymentInfo
	for i := 0; ; i++ {
		prefix := fmt.Sprintf("PAYMENTINFO_%d_", i)
		txn := r.get(prefix + "TRANSACTIONID")
		if txn == "" && r.get(prefix+"PAYMENTSTATUS") == "" {
			break
		}
		out = append(out, PaymentInfo{
			TransactionID: txn,
			PaymentStatus: r.get(prefix + "PAYMENTSTATUS"),
			PendingReason: r.get(prefix + "PENDINGREASON"),
			Amount:        r.amount(prefix + "AMT"),
		})
	}
	return out
}
