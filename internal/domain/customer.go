package domain

import "time"

type Customer struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	StoreID           int64     `json:"store_id" gorm:"index"`
	Email             string    `json:"email" gorm:"type:varchar(255);uniqueIndex"`
	BillingAddressID  *int64    `json:"billing_address_id,omitempty"`
	ShippingAddressID *int64    `json:"shipping_address_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

type Address struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	CustomerID    int64     `json:"customer_id" gorm:"index;not null"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phone_number"`
	Company       string    `json:"company"`
	Address1      string    `json:"address1"`
	Address2      string    `json:"address2"`
	City          string    `json:"city"`
	CountryCode   string    `json:"country_code" gorm:"type:varchar(2)"`
	StateProvince string    `json:"state_province"`
	ZipPostalCode string    `json:"zip_postal_code"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Address) TableName() string { return "addresses" }

// SameAs reports whether both addresses carry identical contact and location fields.
// Comparison is exact: case and surrounding whitespace are significant.
func (a Address) SameAs(b Address) bool {
	return a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.PhoneNumber == b.PhoneNumber &&
		a.Email == b.Email &&
		a.Address1 == b.Address1 &&
		a.Address2 == b.Address2 &&
		a.City == b.City &&
		a.CountryCode == b.CountryCode &&
		a.StateProvince == b.StateProvince &&
		a.ZipPostalCode == b.ZipPostalCode
}

// FindAddress returns the first address in list matching candidate, or nil.
func FindAddress(list []Address, candidate Address) *Address {
	for i := range list {
		if list[i].SameAs(candidate) {
			return &list[i]
		}
	}
	return nil
}
