package domain

import "time"

// IPNDelivery is the forensic log of webhook bodies received from PayPal.
// Identical bodies share a row and bump Deliveries.
type IPNDelivery struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	BodyHash    string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"body_hash"`
	TxnID       string        `gorm:"type:varchar(64);index" json:"txn_id"`
	TxnType     string        `gorm:"type:varchar(64)" json:"txn_type"`
	Verified    bool          `gorm:"index" json:"verified"`
	Status      PaymentStatus `gorm:"type:varchar(32)" json:"status"`
	RawBody     string        `gorm:"type:text" json:"raw_body"`
	Deliveries  int           `gorm:"default:1" json:"deliveries"`
	FirstSeenAt time.Time     `json:"first_seen_at"`
	LastSeenAt  time.Time     `json:"last_seen_at"`
}

func (IPNDelivery) TableName() string { return "ipn_deliveries" }
