package paypal

import (
	"fmt"
	"net/url"
)

const (
	Version = "98.0"
	BNCode  = "nopCommerce_SP"

	liveAPIEndpoint    = "https://api-3t.paypal.com/nvp"
	sandboxAPIEndpoint = "https://api-3t.sandbox.paypal.com/nvp"

	liveVerifyURL    = "https://www.paypal.com/us/cgi-bin/webscr"
	sandboxVerifyURL = "https://www.sandbox.paypal.com/us/cgi-bin/webscr"

	liveRedirectFormat    = "https://www.paypal.com/webscr?cmd=_express-checkout&token=%s"
	sandboxRedirectFormat = "https://www.sandbox.paypal.com/webscr?cmd=_express-checkout&token=%s"
)

func APIEndpoint(isLive bool) string {
	if isLive {
		return liveAPIEndpoint
	}
	return sandboxAPIEndpoint
}

// VerificationURL is where IPN payloads are posted back for validation.
func VerificationURL(isLive bool) string {
	if isLive {
		return liveVerifyURL
	}
	return sandboxVerifyURL
}

// RedirectURL is the buyer-facing Express Checkout page for token.
func RedirectURL(token string, isLive bool) string {
	format := sandboxRedirectFormat
	if isLive {
		format = liveRedirectFormat
	}
	return fmt.Sprintf(format, url.QueryEscape(token))
}
