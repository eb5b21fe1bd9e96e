package paypal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/metrics"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const DefaultTimeout = 20 * time.Second

var ErrTimeout = errors.New("paypal request timed out")

type Credentials struct {
	Username  string
	Password  string
	Signature string
}

// Environment selects the endpoint and the merchant account used for a call.
type Environment struct {
	IsLive      bool
	Credentials Credentials
}

// EnvironmentFor selects the PayPal account and endpoint described by s.
func EnvironmentFor(s domain.PayPalSettings) Environment {
	return Environment{
		IsLive: s.IsLive,
		Credentials: Credentials{
			Username:  s.APIUsername,
			Password:  s.APIPassword,
			Signature: s.APISignature,
		},
	}
}

type Options struct {
	Timeout   time.Duration
	Transport http.RoundTripper
	// Endpoint replaces the live/sandbox NVP endpoint when set.
	Endpoint string
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// NewHTTPClient returns a traced client for calls to PayPal. A nil transport means
// http.DefaultTransport.
func NewHTTPClient(timeout time.Duration, transport http.RoundTripper) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
		Timeout:   timeout,
	}
}

type Client struct {
	http     *http.Client
	endpoint string
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		http:     NewHTTPClient(opts.Timeout, opts.Transport),
		endpoint: opts.Endpoint,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
}

func (c *Client) SetExpressCheckout(ctx context.Context, env Environment, req SetExpressCheckoutRequest) (*SetExpressCheckoutResponse, error) {
	p := nvp{}
	p.set("RETURNURL", req.ReturnURL)
	p.set("CANCELURL", req.CancelURL)
	p.set("REQCONFIRMSHIPPING", req.ReqConfirmShipping)
	p.set("NOSHIPPING", req.NoShipping)
	p.set("LOCALECODE", req.LocaleCode)
	p.set("HDRIMG", req.HeaderImage)
	p.set("CARTBORDERCOLOR", req.CartBorderColor)
	p.set("EMAIL", req.BuyerEmail)
	p.setAmount("MAXAMT", req.MaxAmount)
	p.set("BUTTONSOURCE", req.ButtonSource)
	p.setPaymentDetails(req.PaymentDetails)

	r, err := c.call(ctx, env, "SetExpressCheckout", p)
	if err != nil {
		return nil, err
	}
	return &SetExpressCheckoutResponse{Response: r.envelope(), Token: r.get("TOKEN")}, nil
}

func (c *Client) GetExpressCheckoutDetails(ctx context.Context, env Environment, token string) (*GetExpressCheckoutDetailsResponse, error) {
	p := nvp{}
	p.set("TOKEN", token)

	r, err := c.call(ctx, env, "GetExpressCheckoutDetails", p)
	if err != nil {
		return nil, err
	}
	return &GetExpressCheckoutDetailsResponse{
		Response: r.envelope(),
		Token:    r.get("TOKEN"),
		PayerInfo: PayerInfo{
			PayerID:      r.get("PAYERID"),
			Email:        r.get("EMAIL"),
			FirstName:    r.get("FIRSTNAME"),
			LastName:     r.get("LASTNAME"),
			ContactPhone: r.get("PHONENUM"),
			PayerStatus:  r.get("PAYERSTATUS"),
			Address: Address{
				Name:        r.get("BILLINGNAME"),
				Street1:     r.get("STREET"),
				Street2:     r.get("STREET2"),
				City:        r.get("CITY"),
				State:       r.get("STATE"),
				PostalCode:  r.get("ZIP"),
				CountryCode: r.get("COUNTRYCODE"),
			},
		},
		ShipTo: Address{
			Name:        r.get("PAYMENTREQUEST_0_SHIPTONAME"),
			Street1:     r.get("PAYMENTREQUEST_0_SHIPTOSTREET"),
			Street2:     r.get("PAYMENTREQUEST_0_SHIPTOSTREET2"),
			City:        r.get("PAYMENTREQUEST_0_SHIPTOCITY"),
			State:       r.get("PAYMENTREQUEST_0_SHIPTOSTATE"),
			PostalCode:  r.get("PAYMENTREQUEST_0_SHIPTOZIP"),
			CountryCode: r.get("PAYMENTREQUEST_0_SHIPTOCOUNTRYCODE"),
			Phone:       r.get("PAYMENTREQUEST_0_SHIPTOPHONENUM"),
		},
		Custom:    r.get("PAYMENTREQUEST_0_CUSTOM"),
		InvoiceID: r.get("PAYMENTREQUEST_0_INVNUM"),
	}, nil
}

func (c *Client) DoExpressCheckoutPayment(ctx context.Context, env Environment, req DoExpressCheckoutPaymentRequest) (*DoExpressCheckoutPaymentResponse, error) {
	p := nvp{}
	p.set("TOKEN", req.Token)
	p.set("PAYERID", req.PayerID)
	p.set("BUTTONSOURCE", req.ButtonSource)
	details := req.PaymentDetails
	if details.PaymentAction == "" {
		details.PaymentAction = req.PaymentAction
	}
	p.setPaymentDetails(details)

	r, err := c.call(ctx, env, "DoExpressCheckoutPayment", p)
	if err != nil {
		return nil, err
	}
	return &DoExpressCheckoutPaymentResponse{
		Response:    r.envelope(),
		Token:       r.get("TOKEN"),
		PaymentInfo: r.paymentInfo(),
	}, nil
}

func (c *Client) DoCapture(ctx context.Context, env Environment, req DoCaptureRequest) (*DoCaptureResponse, error) {
	p := nvp{}
	p.set("AUTHORIZATIONID", req.AuthorizationID)
	p.setAmount("AMT", req.Amount)
	p.set("CURRENCYCODE", req.Currency)
	p.set("COMPLETETYPE", req.CompleteType)
	p.set("INVNUM", req.InvoiceID)
	p.set("MSGSUBID", req.MsgSubID)

	r, err := c.call(ctx, env, "DoCapture", p)
	if err != nil {
		return nil, err
	}
	return &DoCaptureResponse{
		Response:        r.envelope(),
		AuthorizationID: r.get("AUTHORIZATIONID"),
		TransactionID:   r.get("TRANSACTIONID"),
		PaymentStatus:   r.get("PAYMENTSTATUS"),
	}, nil
}

func (c *Client) RefundTransaction(ctx context.Context, env Environment, req RefundTransactionRequest) (*RefundTransactionResponse, error) {
	p := nvp{}
	p.set("TRANSACTIONID", req.TransactionID)
	p.set("REFUNDTYPE", req.RefundType)
	if req.RefundType == "Partial" {
		p.setAmount("AMT", req.Amount)
		p.set("CURRENCYCODE", req.Currency)
	}
	p.set("MSGSUBID", req.MsgSubID)

	r, err := c.call(ctx, env, "RefundTransaction", p)
	if err != nil {
		return nil, err
	}
	return &RefundTransactionResponse{
		Response:            r.envelope(),
		RefundTransactionID: r.get("REFUNDTRANSACTIONID"),
		GrossRefundAmount:   r.amount("GROSSREFUNDAMT"),
	}, nil
}

func (c *Client) DoVoid(ctx context.Context, env Environment, req DoVoidRequest) (*DoVoidResponse, error) {
	p := nvp{}
	p.set("AUTHORIZATIONID", req.AuthorizationID)
	p.set("MSGSUBID", req.MsgSubID)

	r, err := c.call(ctx, env, "DoVoid", p)
	if err != nil {
		return nil, err
	}
	return &DoVoidResponse{Response: r.envelope(), AuthorizationID: r.get("AUTHORIZATIONID")}, nil
}

func (c *Client) CreateRecurringPaymentsProfile(ctx context.Context, env Environment, req CreateRecurringPaymentsProfileRequest) (*CreateRecurringPaymentsProfileResponse, error) {
	p := nvp{}
	p.set("TOKEN", req.Token)
	p.set("PROFILESTARTDATE", req.ProfileStartDate.UTC().Format("2006-01-02T15:04:05Z"))
	p.set("PROFILEREFERENCE", req.ProfileReference)
	p.set("DESC", req.Description)
	p.set("BILLINGPERIOD", req.BillingPeriod)
	p.setInt("BILLINGFREQUENCY", req.BillingFrequency)
	p.setInt("TOTALBILLINGCYCLES", req.TotalBillingCycles)
	p.setAmount("AMT", req.Amount)
	p.set("CURRENCYCODE", req.Currency)

	r, err := c.call(ctx, env, "CreateRecurringPaymentsProfile", p)
	if err != nil {
		return nil, err
	}
	return &CreateRecurringPaymentsProfileResponse{
		Response:      r.envelope(),
		ProfileID:     r.get("PROFILEID"),
		ProfileStatus: r.get("PROFILESTATUS"),
	}, nil
}

func (c *Client) ManageRecurringPaymentsProfileStatus(ctx context.Context, env Environment, req ManageRecurringPaymentsProfileStatusRequest) (*ManageRecurringPaymentsProfileStatusResponse, error) {
	p := nvp{}
	p.set("PROFILEID", req.ProfileID)
	p.set("ACTION", req.Action)
	p.set("NOTE", req.Note)

	r, err := c.call(ctx, env, "ManageRecurringPaymentsProfileStatus", p)
	if err != nil {
		return nil, err
	}
	return &ManageRecurringPaymentsProfileStatusResponse{Response: r.envelope(), ProfileID: r.get("PROFILEID")}, nil
}

func (c *Client) call(ctx context.Context, env Environment, method string, p nvp) (reply, error) {
	p.set("METHOD", method)
	p.set("VERSION", Version)
	p.set("USER", env.Credentials.Username)
	p.set("PWD", env.Credentials.Password)
	p.set("SIGNATURE", env.Credentials.Signature)

	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = APIEndpoint(env.IsLive)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(p.encode()))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordPayPalCall(method, "error", time.Since(start).Seconds())
		if isTimeout(err) {
			c.log.Warn("paypal call timed out", zap.String("method", method), zap.Error(err))
			return nil, fmt.Errorf("%s: %w", method, ErrTimeout)
		}
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordPayPalCall(method, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordPayPalCall(method, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%s: paypal returned status %d", method, resp.StatusCode)
	}

	r, err := decodeReply(body)
	if err != nil {
		c.metrics.RecordPayPalCall(method, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	c.metrics.RecordPayPalCall(method, r.get("ACK"), time.Since(start).Seconds())
	c.log.Debug("paypal call",
		zap.String("method", method),
		zap.String("ack", r.get("ACK")),
		zap.String("correlation_id", r.get("CORRELATIONID")),
		zap.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
