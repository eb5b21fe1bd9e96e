package ipn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"paypalexpress/internal/paypal"
)

// Fields holds the IPN payload keyed by lower-cased field name.
type Fields map[string]string

func (f Fields) Get(key string) string {
	return f[strings.ToLower(key)]
}

// ParseFields splits an IPN body on '&' and then on the first '='.
// Pairs without '=' are skipped. Values are URL-decoded when possible.
func ParseFields(rawBody string) Fields {
	fields := Fields{}
	for _, part := range strings.Split(rawBody, "&") {
		part = strings.TrimSpace(part)
		idx := strings.IndexByte(part, '=')
		if idx < 0 {
			continue
		}
		key := strings.ToLower(part[:idx])
		value := part[idx+1:]
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		fields[key] = value
	}
	return fields
}

type Gateway struct {
	client   *http.Client
	settings settingsProvider
	endpoint string
}

func NewGateway(client *http.Client, settings settingsProvider) *Gateway {
	if client == nil {
		client = paypal.NewHTTPClient(paypal.DefaultTimeout, nil)
	}
	return &Gateway{client: client, settings: settings}
}

// WithEndpoint overrides the live/sandbox verification URL.
func (g *Gateway) WithEndpoint(endpoint string) *Gateway {
	g.endpoint = endpoint
	return g
}

// Verify posts the payload back to PayPal unmodified and reports whether PayPal
// acknowledged it. Transport failures are returned as err with verified=false.
func (g *Gateway) Verify(ctx context.Context, rawBody, userAgent string) (bool, Fields, error) {
	fields := ParseFields(rawBody)

	endpoint := g.endpoint
	if endpoint == "" {
		endpoint = paypal.VerificationURL(g.settings.Current(ctx).IsLive)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(rawBody+"&cmd=_notify-validate"))
	if err != nil {
		return false, fields, fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fields, fmt.Errorf("post verification request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fields, fmt.Errorf("read verification response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fields, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	answer := string(body)
	if decoded, err := url.QueryUnescape(answer); err == nil {
		answer = decoded
	}
	return strings.EqualFold(strings.TrimSpace(answer), "VERIFIED"), fields, nil
}
