package cart

import (
	"context"
	"errors"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrItemNotFound       = errors.New("cart item not found")
	ErrMixedRecurringCart = errors.New("recurring items must be bought alone")
	ErrValidation         = errors.New("validation failed")
)

type cartStore interface {
	List(ctx context.Context, storeID, customerID int64) (domain.Cart, error)
	Add(ctx context.Context, item *domain.CartItem) error
	Remove(ctx context.Context, customerID, itemID int64) error
	Clear(ctx context.Context, storeID, customerID int64) error
}

// ValidationError lists the failed field tags of an add request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return ErrValidation.Error() }
func (e *ValidationError) Unwrap() error { return ErrValidation }

type Service struct {
	carts cartStore
}

func NewService(carts cartStore) *Service {
	return &Service{carts: carts}
}

func (s *Service) Get(ctx context.Context, storeID, customerID int64) (*CartResponse, error) {
	items, err := s.carts.List(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = domain.Cart{}
	}
	return &CartResponse{Items: items, ItemTotal: items.ItemTotal(), RequiresShipping: items.RequiresShipping()}, nil
}

// AddItem puts an item in the cart. A recurring item cannot share the cart with anything else,
// since PayPal bills one profile per checkout.
func (s *Service) AddItem(ctx context.Context, storeID, customerID int64, req AddItemRequest) (*domain.CartItem, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	current, err := s.carts.List(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}
	_, hasRecurring := current.Recurring()
	if len(current) > 0 && (req.IsRecurring || hasRecurring) {
		return nil, ErrMixedRecurringCart
	}

	item := &domain.CartItem{
		CustomerID:  customerID,
		StoreID:     storeID,
		SKU:         req.SKU,
		Name:        req.Name,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		IsDownload:  req.IsDownload,
		IsRecurring: req.IsRecurring,
	}
	if req.IsRecurring {
		period, err := domain.ParseCyclePeriod(req.RecurringCyclePeriod)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{"RecurringCyclePeriod": "oneof"}}
		}
		item.RecurringCycleLength = req.RecurringCycleLength
		item.RecurringCyclePeriod = period
		item.RecurringTotalCycles = req.RecurringTotalCycles
	}
	if err := s.carts.Add(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, customerID, itemID int64) error {
	err := s.carts.Remove(ctx, customerID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return err
}

func (s *Service) Clear(ctx context.Context, storeID, customerID int64) error {
	return s.carts.Clear(ctx, storeID, customerID)
}
