package checkout

import (
	"context"
	"strings"

	"paypalexpress/internal/config"
	"paypalexpress/internal/domain"
)

// FixedRateMethod is the computation method name of FixedRateProvider options.
const FixedRateMethod = "Shipping.FixedRate"

// FixedRateProvider offers one option per configured flat rate.
type FixedRateProvider struct {
	rates []config.ShippingRate
}

func NewFixedRateProvider(rates []config.ShippingRate) *FixedRateProvider {
	return &FixedRateProvider{rates: rates}
}

func (p *FixedRateProvider) ShippingOptions(_ context.Context, cart domain.Cart) ([]domain.ShippingOption, error) {
	if !cart.RequiresShipping() {
		return nil, nil
	}
	options := make([]domain.ShippingOption, 0, len(p.rates))
	for _, r := range p.rates {
		options = append(options, domain.ShippingOption{
			Name:                          r.Name,
			Rate:                          r.Rate,
			ShippingRateComputationMethod: FixedRateMethod,
		})
	}
	return options, nil
}

// Shipping caches offered options and the selection of each session.
type Shipping struct {
	provider RateProvider
	state    *State
}

func NewShipping(provider RateProvider, state *State) *Shipping {
	return &Shipping{provider: provider, state: state}
}

// ShippingOptions loads and caches the options for cart. The previous selection is marked
// selected, otherwise the first option is.
func (s *Shipping) ShippingOptions(ctx context.Context, sess Session, cart domain.Cart) ([]ShippingMethodModel, error) {
	options, err := s.provider.ShippingOptions(ctx, cart)
	if err != nil {
		return nil, err
	}
	s.state.Offered.Stage(sess.ID, options)

	models := make([]ShippingMethodModel, 0, len(options))
	for _, o := range options {
		models = append(models, ShippingMethodModel{
			Name:                          o.Name,
			Description:                   o.Description,
			Fee:                           o.Rate,
			ShippingRateComputationMethod: o.ShippingRateComputationMethod,
			Value:                         o.Key(),
		})
	}
	if len(models) == 0 {
		return models, nil
	}

	selected := -1
	if prev, ok := s.state.Selected.Peek(sess.ID); ok {
		for i, m := range models {
			if strings.EqualFold(m.Name, prev.Name) &&
				strings.EqualFold(m.ShippingRateComputationMethod, prev.ShippingRateComputationMethod) {
				selected = i
				break
			}
		}
	}
	if selected < 0 {
		selected = 0
	}
	models[selected].Selected = true
	return models, nil
}

// SelectShippingOption stores the option identified by raw ("name___method").
func (s *Shipping) SelectShippingOption(ctx context.Context, sess Session, cart domain.Cart, raw string) (domain.ShippingOption, error) {
	name, method, ok := parseOptionKey(raw)
	if !ok {
		return domain.ShippingOption{}, ErrInvalidShippingOption
	}

	var candidates []domain.ShippingOption
	if cached, ok := s.state.Offered.Peek(sess.ID); ok {
		for _, o := range cached {
			if strings.EqualFold(o.ShippingRateComputationMethod, method) {
				candidates = append(candidates, o)
			}
		}
	}
	if len(candidates) == 0 {
		options, err := s.provider.ShippingOptions(ctx, cart)
		if err != nil {
			return domain.ShippingOption{}, err
		}
		for _, o := range options {
			if strings.EqualFold(o.ShippingRateComputationMethod, method) {
				candidates = append(candidates, o)
			}
		}
	}

	for _, o := range candidates {
		if strings.EqualFold(o.Name, name) {
			s.state.Selected.Stage(sess.ID, o)
			return o, nil
		}
	}
	return domain.ShippingOption{}, ErrShippingOptionNotFound
}

func (s *Shipping) ClearShippingOption(sess Session) {
	s.state.Selected.Delete(sess.ID)
}

func (s *Shipping) Selected(sess Session) (domain.ShippingOption, bool) {
	return s.state.Selected.Peek(sess.ID)
}

// Offered returns the cached options of the session.
func (s *Shipping) Offered(sess Session) []domain.ShippingOption {
	options, _ := s.state.Offered.Peek(sess.ID)
	return options
}

func parseOptionKey(raw string) (string, string, bool) {
	var parts []string
	for _, p := range strings.Split(raw, "___") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
