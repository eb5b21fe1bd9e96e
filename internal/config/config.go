package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultStoreURL  = "http://localhost:8080/"
)

type Config struct {
	AppEnv      string `yaml:"app_env" env:"APP_ENV" env-default:"dev"`
	HTTPAddr    string `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" env-default:"file:paypalexpress.db?_pragma=busy_timeout(5000)"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	StoreURL    string `yaml:"store_url" env:"STORE_URL" env-default:"http://localhost:8080/"`
	StoreName   string `yaml:"store_name" env:"STORE_NAME" env-default:"Store"`
	AdminAPIKey string `yaml:"admin_api_key" env:"ADMIN_API_KEY"`

	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:5173"`

	// IPNRetention bounds how long cmd/ipn_cleanup keeps delivery log rows.
	IPNRetention time.Duration `yaml:"ipn_retention" env:"IPN_RETENTION" env-default:"2160h"`

	JWT     JWT     `yaml:"jwt"`
	PayPal  PayPal  `yaml:"paypal"`
	Staging Staging `yaml:"staging"`
	Kafka   Kafka   `yaml:"kafka"`

	// ShippingRatesRaw is "Name=rate;Name=rate".
	ShippingRatesRaw string         `yaml:"shipping_rates" env:"SHIPPING_RATES" env-default:"Ground=5.00;Next Day Air=25.00"`
	ShippingRates    []ShippingRate `yaml:"-" env:"-"`
}

type JWT struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET" env-default:"change-me-jwt-secret"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"24h"`
}

type PayPal struct {
	IsLive                   bool          `yaml:"is_live" env:"PAYPAL_IS_LIVE" env-default:"false"`
	APIUsername              string        `yaml:"api_username" env:"PAYPAL_API_USERNAME"`
	APIPassword              string        `yaml:"api_password" env:"PAYPAL_API_PASSWORD"`
	APISignature             string        `yaml:"api_signature" env:"PAYPAL_API_SIGNATURE"`
	EmailAddress             string        `yaml:"email_address" env:"PAYPAL_EMAIL_ADDRESS"`
	LocaleCode               string        `yaml:"locale_code" env:"PAYPAL_LOCALE_CODE" env-default:"US"`
	PaymentAction            string        `yaml:"payment_action" env:"PAYPAL_PAYMENT_ACTION" env-default:"Sale"`
	LogoImageURL             string        `yaml:"logo_image_url" env:"PAYPAL_LOGO_IMAGE_URL"`
	CartBorderColor          string        `yaml:"cart_border_color" env:"PAYPAL_CART_BORDER_COLOR"`
	RequireConfirmedShipping bool          `yaml:"require_confirmed_shipping" env:"PAYPAL_REQUIRE_CONFIRMED_SHIPPING" env-default:"false"`
	DebugLogging             bool          `yaml:"debug_logging" env:"PAYPAL_DEBUG_LOGGING" env-default:"false"`
	HTTPTimeout              time.Duration `yaml:"http_timeout" env:"PAYPAL_HTTP_TIMEOUT" env-default:"20s"`
	Currency                 string        `yaml:"currency" env:"PAYPAL_CURRENCY" env-default:"USD"`
	// Intervals are whole seconds.
	MinOrderPlacementInterval   int `yaml:"min_order_placement_interval" env:"MIN_ORDER_PLACEMENT_INTERVAL" env-default:"30"`
	RegenerateOrderGUIDInterval int `yaml:"regenerate_order_guid_interval" env:"REGENERATE_ORDER_GUID_INTERVAL" env-default:"180"`
}

type Staging struct {
	TTL           time.Duration `yaml:"ttl" env:"STAGING_TTL" env-default:"1h"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"STAGING_SWEEP_INTERVAL" env-default:"5m"`
}

type Kafka struct {
	Brokers      []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	PaymentTopic string   `yaml:"payment_topic" env:"KAFKA_PAYMENT_TOPIC" env-default:"order-payment-status"`
}

type ShippingRate struct {
	Name string
	Rate float64
}

// Load reads CONFIG_PATH (YAML) when set, then the environment on top of it.
func Load() (*Config, error) {
	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}

	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	if !strings.HasSuffix(cfg.StoreURL, "/") {
		cfg.StoreURL += "/"
	}

	rates, err := ParseShippingRates(cfg.ShippingRatesRaw)
	if err != nil {
		return nil, err
	}
	cfg.ShippingRates = rates

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.PayPal.HTTPTimeout <= 0 {
		return fmt.Errorf("PAYPAL_HTTP_TIMEOUT must be > 0")
	}
	if cfg.Staging.TTL <= 0 {
		return fmt.Errorf("STAGING_TTL must be > 0")
	}
	if cfg.Staging.SweepInterval <= 0 {
		return fmt.Errorf("STAGING_SWEEP_INTERVAL must be > 0")
	}
	if cfg.IPNRetention <= 0 {
		return fmt.Errorf("IPN_RETENTION must be > 0")
	}
	if cfg.PayPal.MinOrderPlacementInterval < 0 {
		return fmt.Errorf("MIN_ORDER_PLACEMENT_INTERVAL must be >= 0")
	}
	if cfg.PayPal.RegenerateOrderGUIDInterval < 0 {
		return fmt.Errorf("REGENERATE_ORDER_GUID_INTERVAL must be >= 0")
	}
	if cfg.PayPal.PaymentAction != "Authorization" && cfg.PayPal.PaymentAction != "Sale" {
		return fmt.Errorf("PAYPAL_PAYMENT_ACTION must be one of: Authorization, Sale")
	}
	if strings.TrimSpace(cfg.StoreURL) == "/" {
		return fmt.Errorf("STORE_URL must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWT.Secret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if strings.TrimSpace(cfg.PayPal.APIUsername) == "" ||
			strings.TrimSpace(cfg.PayPal.APIPassword) == "" ||
			strings.TrimSpace(cfg.PayPal.APISignature) == "" {
			return fmt.Errorf("in prod/release PAYPAL_API_USERNAME, PAYPAL_API_PASSWORD and PAYPAL_API_SIGNATURE must be set")
		}
		if strings.TrimSpace(cfg.AdminAPIKey) == "" {
			return fmt.Errorf("in prod/release ADMIN_API_KEY must be set")
		}
		if cfg.StoreURL == defaultStoreURL {
			return fmt.Errorf("in prod/release STORE_URL must be set")
		}
	}
	return nil
}

// ParseShippingRates parses "Ground=5.00;Next Day Air=25" into rates ordered by rate.
func ParseShippingRates(raw string) ([]ShippingRate, error) {
	var rates []ShippingRate
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid SHIPPING_RATES entry %q", part)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || rate < 0 {
			return nil, fmt.Errorf("invalid SHIPPING_RATES rate for %q", name)
		}
		rates = append(rates, ShippingRate{Name: name, Rate: rate})
	}
	sort.SliceStable(rates, func(i, j int) bool { return rates[i].Rate < rates[j].Rate })
	return rates, nil
}

func (c *Config) KafkaEnabled() bool {
	for _, b := range c.Kafka.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
