package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/pkg/keylock"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db    *gorm.DB
	locks *keylock.Locker
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, locks: keylock.New()}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if o.PaymentStatus == "" {
		o.PaymentStatus = domain.PaymentPending
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByGUID(ctx context.Context, guid string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("order_guid = ?", guid).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// LatestByCustomer returns the most recent order of the customer in the store, or nil.
func (r *OrderRepository) LatestByCustomer(ctx context.Context, storeID, customerID int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND customer_id = ?", storeID, customerID).
		Order("created_at DESC").Order("id DESC").
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OrderRepository) AddNote(ctx context.Context, orderID int64, note string, displayToCustomer bool) error {
	return r.db.WithContext(ctx).Create(&domain.OrderNote{
		OrderID:           orderID,
		Note:              note,
		DisplayToCustomer: displayToCustomer,
		CreatedAt:         time.Now().UTC(),
	}).Error
}

func (r *OrderRepository) Notes(ctx context.Context, orderID int64) ([]domain.OrderNote, error) {
	var notes []domain.OrderNote
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&notes).Error
	return notes, err
}

// Transition runs fn against a freshly read copy of the order while holding both an
// in-process lock for the order and a row lock in the database. The order is persisted
// only when fn reports an applied transition.
func (r *OrderRepository) Transition(ctx context.Context, orderID int64, fn func(o *domain.Order) domain.TransitionResult) (domain.TransitionResult, *domain.Order, error) {
	unlock := r.locks.Lock(strconv.FormatInt(orderID, 10))
	defer unlock()

	var (
		res   domain.TransitionResult
		order domain.Order
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			return err
		}
		res = fn(&order)
		if !res.Applied {
			return nil
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return domain.TransitionResult{}, nil, err
	}
	return res, &order, nil
}
