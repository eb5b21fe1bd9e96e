package settings

import (
	"context"
	"strings"
	"sync"

	"paypalexpress/internal/config"
	"paypalexpress/internal/domain"
	"paypalexpress/internal/pkg/validator"

	validatorlib "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func init() {
	validator.RegisterValidation("paypal_locale", func(fl validatorlib.FieldLevel) bool {
		return IsLocaleCode(fl.Field().String())
	})
}

type settingsRepo interface {
	Get(ctx context.Context) (*domain.PayPalSettings, error)
	Save(ctx context.Context, s *domain.PayPalSettings) error
}

type logoChecker interface {
	Validate(ctx context.Context, rawURL string) []string
}

type Service struct {
	repo     settingsRepo
	defaults domain.PayPalSettings
	logo     logoChecker
	log      *zap.Logger

	mu     sync.RWMutex
	cached *domain.PayPalSettings
}

func NewService(repo settingsRepo, defaults domain.PayPalSettings, logo logoChecker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, defaults: defaults, logo: logo, log: log}
}

// DefaultsFromConfig maps the environment configuration onto a settings value.
func DefaultsFromConfig(c config.PayPal) domain.PayPalSettings {
	return domain.PayPalSettings{
		IsLive:                      c.IsLive,
		APIUsername:                 c.APIUsername,
		APIPassword:                 c.APIPassword,
		APISignature:                c.APISignature,
		EmailAddress:                c.EmailAddress,
		LocaleCode:                  c.LocaleCode,
		PaymentAction:               domain.PaymentAction(c.PaymentAction),
		LogoImageURL:                c.LogoImageURL,
		CartBorderColor:             c.CartBorderColor,
		RequireConfirmedShipping:    c.RequireConfirmedShipping,
		EnableDebugLogging:          c.DebugLogging,
		MinOrderPlacementInterval:   c.MinOrderPlacementInterval,
		RegenerateOrderGUIDInterval: c.RegenerateOrderGUIDInterval,
	}
}

// Current returns the effective settings. A stored row overrides the environment
// defaults; credentials left empty in the row fall back to the environment.
func (s *Service) Current(ctx context.Context) domain.PayPalSettings {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return *cached
	}

	stored, err := s.repo.Get(ctx)
	if err != nil {
		s.log.Error("paypal settings not loaded, using defaults", zap.Error(err))
		return s.defaults
	}

	effective := s.merge(stored)
	s.mu.Lock()
	s.cached = &effective
	s.mu.Unlock()
	return effective
}

func (s *Service) merge(stored *domain.PayPalSettings) domain.PayPalSettings {
	if stored == nil {
		return s.defaults
	}
	out := *stored
	if out.APIUsername == "" {
		out.APIUsername = s.defaults.APIUsername
	}
	if out.APIPassword == "" {
		out.APIPassword = s.defaults.APIPassword
	}
	if out.APISignature == "" {
		out.APISignature = s.defaults.APISignature
	}
	if out.LocaleCode == "" {
		out.LocaleCode = s.defaults.LocaleCode
	}
	if out.PaymentAction == "" {
		out.PaymentAction = s.defaults.PaymentAction
	}
	return out
}

func (s *Service) Update(ctx context.Context, req UpdateSettingsRequest) (*domain.PayPalSettings, error) {
	req.LogoImageURL = strings.TrimSpace(req.LogoImageURL)
	req.CartBorderColor = strings.TrimPrefix(strings.TrimSpace(req.CartBorderColor), "#")

	if fields := validator.Validate(req); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if msgs := s.logo.Validate(ctx, req.LogoImageURL); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	current := s.Current(ctx)
	next := domain.PayPalSettings{
		IsLive:                      req.IsLive,
		APIUsername:                 strings.TrimSpace(req.APIUsername),
		APIPassword:                 current.APIPassword,
		APISignature:                current.APISignature,
		EmailAddress:                strings.TrimSpace(req.EmailAddress),
		LocaleCode:                  req.LocaleCode,
		PaymentAction:               domain.PaymentAction(req.PaymentAction),
		LogoImageURL:                req.LogoImageURL,
		CartBorderColor:             req.CartBorderColor,
		RequireConfirmedShipping:    req.RequireConfirmedShipping,
		EnableDebugLogging:          req.EnableDebugLogging,
		MinOrderPlacementInterval:   req.MinOrderPlacementInterval,
		RegenerateOrderGUIDInterval: req.RegenerateOrderGUIDInterval,
	}
	if req.APIPassword != nil {
		next.APIPassword = *req.APIPassword
	}
	if req.APISignature != nil {
		next.APISignature = *req.APISignature
	}

	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, err
	}

	effective := s.merge(&next)
	s.mu.Lock()
	s.cached = &effective
	s.mu.Unlock()

	s.log.Info("paypal settings updated",
		zap.Bool("is_live", effective.IsLive),
		zap.String("payment_action", string(effective.PaymentAction)),
	)
	return &effective, nil
}

func (s *Service) Options(ctx context.Context) OptionsResponse {
	cur := s.Current(ctx)
	return OptionsResponse{
		PaymentActions: PaymentActionOptions(cur.PaymentAction),
		Locales:        LocaleOptions(cur.LocaleCode),
	}
}
