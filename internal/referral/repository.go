package referral

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsulates click storage access.
type Repository struct {
	DB *gorm.DB
}

// NewRepository creates a new repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB returns a copy of the repo bound to a specific *gorm.DB (e.g. a tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

// Create appends a click.
func (r *Repository) Create(c *ReferralClick) error {
	return r.DB.Create(c).Error
}

// FindConversionByCustomer returns the click already credited to a
// customer, if any.
func (r *Repository) FindConversionByCustomer(customerID uint) (*ReferralClick, error) {
	var c ReferralClick
	err := r.DB.Where("converted_customer_id = ?", customerID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LockEarliestUnconverted returns the oldest unconverted click for a code
// under FOR UPDATE (first-click attribution).
func (r *Repository) LockEarliestUnconverted(code string) (*ReferralClick, error) {
	var c ReferralClick
	err := r.DB.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("referral_code = ? AND converted = ?", code, false).
		Order("clicked_at ASC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update saves all fields of an existing click.
func (r *Repository) Update(c *ReferralClick) error {
	return r.DB.Save(c).Error
}

// CountByCode returns total and converted click counts for a code.
func (r *Repository) CountByCode(code string) (total int64, converted int64, err error) {
	if err = r.DB.Model(&ReferralClick{}).Where("referral_code = ?", code).Count(&total).Error; err != nil {
		return
	}
	err = r.DB.Model(&ReferralClick{}).Where("referral_code = ? AND converted = ?", code, true).Count(&converted).Error
	return
}
