package repository

import (
	"context"
	"time"

	"paypalexpress/internal/domain"

	"gorm.io/gorm"
)

type IPNDeliveryRepository struct {
	db *gorm.DB
}

func NewIPNDeliveryRepository(db *gorm.DB) *IPNDeliveryRepository {
	return &IPNDeliveryRepository{db: db}
}

// Record stores a delivery keyed by body hash. It reports true when the same body was
// seen before, in which case only the counter and last-seen time move.
func (r *IPNDeliveryRepository) Record(ctx context.Context, d *domain.IPNDelivery) (bool, error) {
	if d.Deliveries == 0 {
		d.Deliveries = 1
	}
	if d.LastSeenAt.IsZero() {
		d.LastSeenAt = d.FirstSeenAt
	}

	err := r.db.WithContext(ctx).Create(d).Error
	if err == nil {
		return false, nil
	}
	if !isUniqueConstraintError(err) {
		return false, err
	}

	res := r.db.WithContext(ctx).Model(&domain.IPNDelivery{}).
		Where("body_hash = ?", d.BodyHash).
		Updates(map[string]interface{}{
			"deliveries":   gorm.Expr("deliveries + 1"),
			"last_seen_at": d.LastSeenAt,
			"verified":     d.Verified,
		})
	if res.Error != nil {
		return true, res.Error
	}
	return true, nil
}

func (r *IPNDeliveryRepository) GetByHash(ctx context.Context, hash string) (*domain.IPNDelivery, error) {
	var d domain.IPNDelivery
	if err := r.db.WithContext(ctx).Where("body_hash = ?", hash).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// PruneBefore deletes deliveries last seen before cutoff and returns how many went.
func (r *IPNDeliveryRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("last_seen_at < ?", cutoff).Delete(&domain.IPNDelivery{})
	return res.RowsAffected, res.Error
}
