package influencer

import (
	"github.com/NovaSiteWorks/api-referral/internal/commissionrule"
	"gorm.io/gorm"
)

// Influencer is a referrer: a person who refers customers through a unique
// code and earns commission under their default terms (or an override).
// Deletion is a soft delete so ledger history survives for audit.
type Influencer struct {
	gorm.Model
	Name      string `json:"name"`
	Email     string `json:"email" gorm:"index"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	YouTube   string `json:"youtube"`

	ReferralCode string `json:"referralCode" gorm:"size:50;uniqueIndex"`

	// Default commission terms, used when no override applies.
	CommissionType    string   `json:"commissionType" gorm:"size:20;not null;default:'percentage'"`
	CommissionRate    float64  `json:"commissionRate" gorm:"not null;default:0"`
	FixedRate         float64  `json:"fixedRate" gorm:"not null;default:0"`
	CalculationMethod string   `json:"calculationMethod" gorm:"size:50;not null;default:'project_value'"`
	Trigger           string   `json:"trigger" gorm:"size:50;not null;default:'first_payment'"`
	Cap               *float64 `json:"cap,omitempty"`
	Minimum           *float64 `json:"minimum,omitempty"`

	// Maintained inside the conversion transaction; the metrics aggregator
	// derives the same number from the click table.
	TotalReferrals int `json:"totalReferrals" gorm:"not null;default:0"`
}

// DefaultRule returns the influencer's stored terms as a resolved rule.
func (i Influencer) DefaultRule() commissionrule.Rule {
	return commissionrule.Rule{
		Type:      commissionrule.Type(i.CommissionType),
		Rate:      i.CommissionRate,
		FixedRate: i.FixedRate,
		Method:    commissionrule.Method(i.CalculationMethod),
		Trigger:   commissionrule.Trigger(i.Trigger),
		Cap:       i.Cap,
		Minimum:   i.Minimum,
	}.Normalized()
}

// Migrate creates the influencers table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Influencer{})
}
