package repository

import (
	"context"

	"paypalexpress/internal/domain"

	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) List(ctx context.Context, storeID, customerID int64) (domain.Cart, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND customer_id = ?", storeID, customerID).
		Order("id ASC").
		Find(&items).Error
	return domain.Cart(items), err
}

func (r *CartRepository) Add(ctx context.Context, item *domain.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *CartRepository) Remove(ctx context.Context, customerID, itemID int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND customer_id = ?", itemID, customerID).Delete(&domain.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, storeID, customerID int64) error {
	return r.db.WithContext(ctx).
		Where("store_id = ? AND customer_id = ?", storeID, customerID).
		Delete(&domain.CartItem{}).Error
}
