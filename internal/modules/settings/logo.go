package settings

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
)

const (
	maxLogoWidth  = 190
	maxLogoHeight = 60
	maxLogoBytes  = 5 << 20
)

const (
	msgLogoURLInvalid = "Logo Image URL is not in a valid format"
	msgLogoNotHTTPS   = "Logo Image must be hosted on https"
	msgLogoTooWide    = "Image must be less than or equal to 190 px in width"
	msgLogoTooTall    = "Image must be less than or equal to 60 px in height"
	msgLogoNotImage   = "Logo image was not a valid "
)

type LogoValidator struct {
	client *http.Client
}

func NewLogoValidator(client *http.Client) *LogoValidator {
	if client == nil {
		client = http.DefaultClient
	}
	return &LogoValidator{client: client}
}

// Validate fetches the logo and checks its dimensions. An empty URL is valid.
func (v *LogoValidator) Validate(ctx context.Context, rawURL string) []string {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return []string{msgLogoURLInvalid}
	}
	if u.Scheme != "https" {
		return []string{msgLogoNotHTTPS}
	}

	cfg, err := v.fetch(ctx, u.String())
	if err != nil {
		return []string{msgLogoNotImage}
	}

	var errs []string
	if cfg.Width > maxLogoWidth {
		errs = append(errs, msgLogoTooWide)
	}
	if cfg.Height > maxLogoHeight {
		errs = append(errs, msgLogoTooTall)
	}
	return errs
}

func (v *LogoValidator) fetch(ctx context.Context, target string) (image.Config, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return image.Config{}, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return image.Config{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return image.Config{}, fmt.Errorf("logo fetch returned %d", resp.StatusCode)
	}
	cfg, _, err := image.DecodeConfig(io.LimitReader(resp.Body, maxLogoBytes))
	return cfg, err
}
