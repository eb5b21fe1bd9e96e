package repository

import (
	"context"
	"time"

	"paypalexpress/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecurringPaymentRepository struct {
	db *gorm.DB
}

func NewRecurringPaymentRepository(db *gorm.DB) *RecurringPaymentRepository {
	return &RecurringPaymentRepository{db: db}
}

func (r *RecurringPaymentRepository) Create(ctx context.Context, rp *domain.RecurringPayment) error {
	return r.db.WithContext(ctx).Create(rp).Error
}

func (r *RecurringPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.RecurringPayment, error) {
	var rp domain.RecurringPayment
	if err := r.db.WithContext(ctx).First(&rp, id).Error; err != nil {
		return nil, err
	}
	return &rp, nil
}

func (r *RecurringPaymentRepository) ListByInitialOrder(ctx context.Context, orderID int64) ([]domain.RecurringPayment, error) {
	var list []domain.RecurringPayment
	err := r.db.WithContext(ctx).Where("initial_order_id = ?", orderID).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *RecurringPaymentRepository) HistoryCount(ctx context.Context, recurringPaymentID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RecurringPaymentHistory{}).
		Where("recurring_payment_id = ?", recurringPaymentID).
		Count(&n).Error
	return n, err
}

func (r *RecurringPaymentRepository) History(ctx context.Context, recurringPaymentID int64) ([]domain.RecurringPaymentHistory, error) {
	var list []domain.RecurringPaymentHistory
	err := r.db.WithContext(ctx).Where("recurring_payment_id = ?", recurringPaymentID).Order("id ASC").Find(&list).Error
	return list, err
}

// InsertFirstCycle records the initial billing cycle. It is a no-op when history already exists.
func (r *RecurringPaymentRepository) InsertFirstCycle(ctx context.Context, recurringPaymentID, orderID int64, txnID string) (bool, error) {
	return r.recordCycle(ctx, recurringPaymentID, orderID, txnID, true)
}

// AdvanceCycle records the next billing cycle of an active profile.
// A cycle already recorded for txnID is not recorded again.
func (r *RecurringPaymentRepository) AdvanceCycle(ctx context.Context, recurringPaymentID, orderID int64, txnID string) (bool, error) {
	return r.recordCycle(ctx, recurringPaymentID, orderID, txnID, false)
}

func (r *RecurringPaymentRepository) recordCycle(ctx context.Context, recurringPaymentID, orderID int64, txnID string, first bool) (bool, error) {
	var recorded bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rp domain.RecurringPayment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rp, recurringPaymentID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&domain.RecurringPaymentHistory{}).Where("recurring_payment_id = ?", rp.ID).Count(&existing).Error; err != nil {
			return err
		}
		if first && existing > 0 {
			return nil
		}
		if !first && !rp.IsActive {
			return nil
		}
		if txnID != "" {
			var dup int64
			if err := tx.Model(&domain.RecurringPaymentHistory{}).
				Where("recurring_payment_id = ? AND txn_id = ?", rp.ID, txnID).
				Count(&dup).Error; err != nil {
				return err
			}
			if dup > 0 {
				return nil
			}
		}

		if err := tx.Create(&domain.RecurringPaymentHistory{
			RecurringPaymentID: rp.ID,
			OrderID:            orderID,
			TxnID:              txnID,
			CreatedAt:          time.Now().UTC(),
		}).Error; err != nil {
			return err
		}

		rp.RecordCycle()
		if err := tx.Save(&rp).Error; err != nil {
			return err
		}
		recorded = true
		return nil
	})
	return recorded, err
}

func (r *RecurringPaymentRepository) Deactivate(ctx context.Context, recurringPaymentID int64) error {
	res := r.db.WithContext(ctx).Model(&domain.RecurringPayment{}).
		Where("id = ?", recurringPaymentID).
		Updates(map[string]interface{}{"is_active": false, "next_payment_date": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
