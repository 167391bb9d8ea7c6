package commissionrule

import (
	"time"

	"gorm.io/gorm"
)

// Override scopes. A customer-scoped override beats a code-scoped one,
// which beats an influencer-wide one.
const (
	ScopeCustomer   = "customer"
	ScopeCode       = "code"
	ScopeInfluencer = "influencer"
)

// Override replaces an influencer's default commission terms for a specific
// customer, a specific referral code, or a time window.
type Override struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	InfluencerID uint   `gorm:"not null;index" json:"influencerId"`
	CustomerID   *uint  `gorm:"index" json:"customerId,omitempty"`
	ReferralCode string `gorm:"size:50;index" json:"referralCode,omitempty"`

	CommissionType    string   `gorm:"size:20;not null" json:"commissionType"`
	Rate              float64  `gorm:"not null;default:0" json:"rate"`
	FixedRate         float64  `gorm:"not null;default:0" json:"fixedRate"`
	CalculationMethod string   `gorm:"size:50;not null" json:"calculationMethod"`
	Trigger           string   `gorm:"size:50;not null" json:"trigger"`
	Cap               *float64 `json:"cap,omitempty"`
	Minimum           *float64 `json:"minimum,omitempty"`

	ValidFrom  *time.Time `json:"validFrom,omitempty"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Scope reports how specific this override is.
func (o Override) Scope() string {
	if o.CustomerID != nil {
		return ScopeCustomer
	}
	if o.ReferralCode != "" {
		return ScopeCode
	}
	return ScopeInfluencer
}

// ActiveAt reports whether the validity window (if any) contains t.
func (o Override) ActiveAt(t time.Time) bool {
	if o.ValidFrom != nil && t.Before(*o.ValidFrom) {
		return false
	}
	if o.ValidUntil != nil && t.After(*o.ValidUntil) {
		return false
	}
	return true
}

// Matches reports whether the override applies to the given customer/code.
// Influencer-wide overrides match anything.
func (o Override) Matches(customerID *uint, code string) bool {
	switch o.Scope() {
	case ScopeCustomer:
		return customerID != nil && *o.CustomerID == *customerID
	case ScopeCode:
		return code != "" && o.ReferralCode == code
	default:
		return true
	}
}

// Rule converts the override into a resolved rule.
func (o Override) Rule() Rule {
	return Rule{
		Type:      Type(o.CommissionType),
		Rate:      o.Rate,
		FixedRate: o.FixedRate,
		Method:    Method(o.CalculationMethod),
		Trigger:   Trigger(o.Trigger),
		Cap:       o.Cap,
		Minimum:   o.Minimum,
	}.Normalized()
}

// Migrate creates the overrides table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Override{})
}
