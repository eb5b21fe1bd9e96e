package checkout

import (
	"context"
	"strings"
	"time"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/paypal"

	"go.uber.org/zap"
)

const (
	returnPath = "Plugins/PaymentPayPalExpressCheckout/ReturnHandler"
	cartPath   = "cart"
)

// Coordinator drives the browser round trip to PayPal: it hands the cart over and
// stages the payment request once the buyer comes back.
type Coordinator struct {
	api       expressCheckoutAPI
	carts     cartStore
	customers customerStore
	settings  settingsProvider
	shipping  *Shipping
	state     *State
	storeURL  string
	currency  string
	log       *zap.Logger
	now       func() time.Time
}

func NewCoordinator(api expressCheckoutAPI, carts cartStore, customers customerStore, settings settingsProvider, shipping *Shipping, state *State, storeURL, currency string, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if !strings.HasSuffix(storeURL, "/") {
		storeURL += "/"
	}
	return &Coordinator{
		api:       api,
		carts:     carts,
		customers: customers,
		settings:  settings,
		shipping:  shipping,
		state:     state,
		storeURL:  storeURL,
		currency:  currency,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (c *Coordinator) CartURL() string { return c.storeURL + cartPath }

// InitiateCheckout passes the cart to PayPal and returns where the buyer goes next:
// the PayPal login page, or back to referrer when PayPal refused the cart.
func (c *Coordinator) InitiateCheckout(ctx context.Context, sess Session, referrer string) (string, error) {
	cart, err := c.carts.List(ctx, sess.StoreID, sess.CustomerID)
	if err != nil {
		return "", err
	}
	if len(cart) == 0 {
		return "", ErrEmptyCart
	}

	settings := c.settings.Current(ctx)
	options, err := c.shipping.provider.ShippingOptions(ctx, cart)
	if err != nil {
		c.log.Warn("shipping options not loaded", zap.String("session_id", sess.ID), zap.Error(err))
	}

	var buyerEmail string
	if customer, err := c.customers.GetByID(ctx, sess.CustomerID); err == nil {
		buyerEmail = customer.Email
	}

	reqConfirm, noShipping := shippingFlags(cart, settings.RequireConfirmedShipping)
	details := paymentDetails(cart, 0, c.currency)
	details.PaymentAction = string(settings.PaymentAction)

	resp, err := c.api.SetExpressCheckout(ctx, paypal.EnvironmentFor(settings), paypal.SetExpressCheckoutRequest{
		ReturnURL:          c.storeURL + returnPath,
		CancelURL:          c.CartURL(),
		ReqConfirmShipping: reqConfirm,
		NoShipping:         noShipping,
		LocaleCode:         settings.LocaleCode,
		HeaderImage:        settings.LogoImageURL,
		CartBorderColor:    settings.CartBorderColor,
		BuyerEmail:         buyerEmail,
		MaxAmount:          maxAmount(cart, options),
		ButtonSource:       paypal.BNCode,
		PaymentDetails:     details,
	})
	if err == nil && resp.Succeeded() {
		return paypal.RedirectURL(resp.Token, settings.IsLive), nil
	}

	var reasons []string
	if err != nil {
		reasons = append(reasons, err.Error())
	} else {
		for _, e := range resp.Errors {
			reasons = append(reasons, e.Error())
		}
	}
	c.log.Error("Error passing cart to PayPal",
		zap.String("session_id", sess.ID),
		zap.String("errors", strings.Join(reasons, ", ")),
	)
	c.state.Errors.Stage(sess.ID, msgCartSetupFailed)

	if referrer == "" {
		referrer = c.CartURL()
	}
	return referrer, nil
}

// CompleteReturn handles the buyer coming back from PayPal with token. It copies the
// PayPal addresses onto the customer and stages the payment request for placement.
func (c *Coordinator) CompleteReturn(ctx context.Context, sess Session, token string) (bool, error) {
	settings := c.settings.Current(ctx)
	details, err := c.api.GetExpressCheckoutDetails(ctx, paypal.EnvironmentFor(settings), token)
	if err != nil {
		c.log.Warn("GetExpressCheckoutDetails failed", zap.String("session_id", sess.ID), zap.Error(err))
		return false, nil
	}
	if !details.Succeeded() {
		c.log.Warn("GetExpressCheckoutDetails rejected",
			zap.String("session_id", sess.ID),
			zap.Strings("errors", details.ErrorStrings()),
		)
		return false, nil
	}

	cart, err := c.carts.List(ctx, sess.StoreID, sess.CustomerID)
	if err != nil {
		return false, err
	}

	existing, err := c.customers.Addresses(ctx, sess.CustomerID)
	if err != nil {
		return false, err
	}

	billing, err := c.reconcileAddress(ctx, sess.CustomerID, &existing, billingAddress(details.PayerInfo))
	if err != nil {
		return false, err
	}
	if err := c.customers.SetBillingAddress(ctx, sess.CustomerID, billing.ID); err != nil {
		return false, err
	}

	c.shipping.ClearShippingOption(sess)

	if cart.RequiresShipping() {
		shipping, err := c.reconcileAddress(ctx, sess.CustomerID, &existing, shippingAddress(details.ShipTo, details.PayerInfo.Email))
		if err != nil {
			return false, err
		}
		if err := c.customers.SetShippingAddress(ctx, sess.CustomerID, shipping.ID); err != nil {
			return false, err
		}
	}

	if details.Token != "" {
		token = details.Token
	}
	req := domain.PendingPaymentRequest{
		CustomerID:              sess.CustomerID,
		StoreID:                 sess.StoreID,
		Token:                   token,
		PayerID:                 details.PayerInfo.PayerID,
		OrderTotal:              cart.ItemTotal(),
		Currency:                c.currency,
		PaymentMethodSystemName: domain.PayPalExpressSystemName,
	}
	if item, ok := cart.Recurring(); ok {
		req.IsRecurring = true
		req.RecurringCycleLength = item.RecurringCycleLength
		req.RecurringCyclePeriod = item.RecurringCyclePeriod
		req.RecurringTotalCycles = item.RecurringTotalCycles
	}

	var previous *domain.PendingPaymentRequest
	if staged, ok := c.state.Requests.Peek(sess.ID); ok {
		previous = &staged
	}
	req.InheritGUID(previous, settings.GUIDRegenerationInterval(), c.now())
	c.state.Requests.Stage(sess.ID, req)

	c.log.Info("express checkout request staged",
		zap.String("session_id", sess.ID),
		zap.String("order_guid", req.OrderGUID.String()),
	)
	return true, nil
}

// reconcileAddress reuses an identical address of the customer or inserts candidate.
func (c *Coordinator) reconcileAddress(ctx context.Context, customerID int64, existing *[]domain.Address, candidate domain.Address) (*domain.Address, error) {
	if found := domain.FindAddress(*existing, candidate); found != nil {
		return found, nil
	}
	candidate.CustomerID = customerID
	candidate.CreatedAt = c.now()
	if err := c.customers.CreateAddress(ctx, &candidate); err != nil {
		return nil, err
	}
	*existing = append(*existing, candidate)
	return &candidate, nil
}

func billingAddress(p paypal.PayerInfo) domain.Address {
	return domain.Address{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		PhoneNumber:   p.ContactPhone,
		Address1:      p.Address.Street1,
		Address2:      p.Address.Street2,
		City:          p.Address.City,
		StateProvince: p.Address.State,
		ZipPostalCode: p.Address.PostalCode,
		CountryCode:   p.Address.CountryCode,
	}
}

func shippingAddress(a paypal.Address, email string) domain.Address {
	first, last, _ := strings.Cut(strings.TrimSpace(a.Name), " ")
	return domain.Address{
		FirstName:     first,
		LastName:      strings.TrimSpace(last),
		Email:         email,
		PhoneNumber:   a.Phone,
		Address1:      a.Street1,
		Address2:      a.Street2,
		City:          a.City,
		StateProvince: a.State,
		ZipPostalCode: a.PostalCode,
		CountryCode:   a.CountryCode,
	}
}
