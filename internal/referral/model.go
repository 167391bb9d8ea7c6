package referral

import (
	"time"

	"gorm.io/gorm"
)

// ReferralClick is one landing on a referral link. Converted flips to true
// exactly once, when the referred lead becomes a customer; the unique index
// on the converting customer is the double-conversion guard.
type ReferralClick struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReferralCode string    `gorm:"size:50;not null;index" json:"referralCode"`
	ClickedAt    time.Time `gorm:"not null;index" json:"clickedAt"`
	Converted    bool      `gorm:"not null;default:false;index" json:"converted"`

	// Set when this click is credited with a conversion. Unique so one
	// customer can convert at most one click.
	ConvertedCustomerID *uint `gorm:"uniqueIndex" json:"convertedCustomerId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Migrate creates the clicks table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ReferralClick{})
}
