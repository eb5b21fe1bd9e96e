package domain

import (
	"fmt"
	"strings"
	"time"
)

type CyclePeriod string

const (
	CycleDays   CyclePeriod = "days"
	CycleWeeks  CyclePeriod = "weeks"
	CycleMonths CyclePeriod = "months"
	CycleYears  CyclePeriod = "years"
)

func ParseCyclePeriod(v string) (CyclePeriod, error) {
	switch p := CyclePeriod(strings.ToLower(strings.TrimSpace(v))); p {
	case CycleDays, CycleWeeks, CycleMonths, CycleYears:
		return p, nil
	default:
		return "", fmt.Errorf("not supported cycle period %q", v)
	}
}

// Advance returns t moved forward by length periods.
func (p CyclePeriod) Advance(t time.Time, length int) time.Time {
	switch p {
	case CycleDays:
		return t.AddDate(0, 0, length)
	case CycleWeeks:
		return t.AddDate(0, 0, 7*length)
	case CycleMonths:
		return t.AddDate(0, length, 0)
	case CycleYears:
		return t.AddDate(length, 0, 0)
	default:
		return t
	}
}

type RecurringPayment struct {
	ID              int64       `json:"id" gorm:"primaryKey"`
	InitialOrderID  int64       `json:"initial_order_id" gorm:"index;not null"`
	CycleLength     int         `json:"cycle_length"`
	CyclePeriod     CyclePeriod `json:"cycle_period" gorm:"type:varchar(10)"`
	TotalCycles     int         `json:"total_cycles"`
	CyclesProcessed int         `json:"cycles_processed"`
	StartDate       time.Time   `json:"start_date"`
	NextPaymentDate *time.Time  `json:"next_payment_date,omitempty"`
	IsActive        bool        `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	History []RecurringPaymentHistory `json:"history,omitempty" gorm:"foreignKey:RecurringPaymentID"`
}

func (RecurringPayment) TableName() string { return "recurring_payments" }

// RecordCycle marks one more billing cycle as processed and schedules the next one.
// The profile is deactivated once TotalCycles is reached; zero means unlimited.
func (rp *RecurringPayment) RecordCycle() {
	rp.CyclesProcessed++
	if rp.TotalCycles > 0 && rp.CyclesProcessed >= rp.TotalCycles {
		rp.IsActive = false
		rp.NextPaymentDate = nil
		return
	}
	next := rp.CyclePeriod.Advance(rp.StartDate, rp.CycleLength*rp.CyclesProcessed)
	rp.NextPaymentDate = &next
}

type RecurringPaymentHistory struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	RecurringPaymentID int64     `json:"recurring_payment_id" gorm:"index;not null"`
	OrderID            int64     `json:"order_id" gorm:"index"`
	TxnID              string    `json:"txn_id,omitempty" gorm:"type:varchar(64);index"`
	CreatedAt          time.Time `json:"created_at"`
}

func (RecurringPaymentHistory) TableName() string { return "recurring_payment_histories" }
