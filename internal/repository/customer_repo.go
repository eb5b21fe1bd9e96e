package repository

import (
	"context"
	"errors"
	"strings"

	"paypalexpress/internal/domain"

	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreateByEmail returns the customer registered with email, creating it on first use.
// A concurrent insert of the same email resolves to the row that won.
func (r *CustomerRepository) FindOrCreateByEmail(ctx context.Context, storeID int64, email string) (*domain.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var c domain.Customer
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c = domain.Customer{StoreID: storeID, Email: email}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if !isUniqueConstraintError(err) {
			return nil, err
		}
		if err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error; err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (r *CustomerRepository) SetBillingAddress(ctx context.Context, customerID, addressID int64) error {
	return r.db.WithContext(ctx).Model(&domain.Customer{}).Where("id = ?", customerID).
		Update("billing_address_id", addressID).Error
}

func (r *CustomerRepository) SetShippingAddress(ctx context.Context, customerID, addressID int64) error {
	return r.db.WithContext(ctx).Model(&domain.Customer{}).Where("id = ?", customerID).
		Update("shipping_address_id", addressID).Error
}

func (r *CustomerRepository) Addresses(ctx context.Context, customerID int64) ([]domain.Address, error) {
	var list []domain.Address
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *CustomerRepository) GetAddress(ctx context.Context, id int64) (*domain.Address, error) {
	var a domain.Address
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *CustomerRepository) CreateAddress(ctx context.Context, a *domain.Address) error {
	return r.db.WithContext(ctx).Create(a).Error
}
