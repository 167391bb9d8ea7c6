package customer

import (
	"time"

	"gorm.io/gorm"
)

// Project statuses tracked on a customer.
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectRejected  = "rejected"
)

// Customer is a client account, possibly referred by an influencer. The
// referral code is snapshotted at signup; InfluencerID is resolved from it.
type Customer struct {
	gorm.Model
	Name    string `json:"name"`
	Email   string `json:"email" gorm:"index"`
	Phone   string `json:"phone"`
	Company string `json:"company"`

	ProjectValue  float64 `json:"projectValue" gorm:"not null;default:0"`
	ProjectStatus string  `json:"projectStatus" gorm:"size:50;not null;default:'active';index"`

	ReferralCode string `json:"referralCode" gorm:"size:50;index"`
	InfluencerID *uint  `json:"influencerId,omitempty" gorm:"index"`

	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:CustomerID"`
}

// Payment is one payment received from a customer.
type Payment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  uint      `gorm:"not null;index" json:"customerId"`
	Amount      float64   `gorm:"not null;default:0" json:"amount"`
	PaymentDate time.Time `gorm:"not null;index" json:"paymentDate"`
	Method      string    `gorm:"size:100" json:"method"`
	Notes       string    `gorm:"size:500" json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Migrate creates the customer tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Customer{}, &Payment{})
}
