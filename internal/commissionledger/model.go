package commissionledger

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry statuses. pending is the only non-terminal state.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// CommissionEntry is one earned commission in the ledger. The composite
// unique index on (influencer, customer, trigger, trigger_event_id) is the
// idempotency key for RecordEarned.
type CommissionEntry struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	InfluencerID   uint   `gorm:"not null;index;uniqueIndex:idx_ledger_trigger_event" json:"influencerId"`
	CustomerID     uint   `gorm:"not null;index;uniqueIndex:idx_ledger_trigger_event" json:"customerId"`
	Trigger        string `gorm:"size:50;not null;uniqueIndex:idx_ledger_trigger_event" json:"trigger"`
	TriggerEventID string `gorm:"size:100;not null;uniqueIndex:idx_ledger_trigger_event" json:"triggerEventId"`

	ProjectValue          float64        `gorm:"not null;default:0" json:"projectValue"`
	CommissionRate        float64        `gorm:"not null;default:0" json:"commissionRate"`
	FixedRate             float64        `gorm:"not null;default:0" json:"fixedRate"`
	CommissionAmount      float64        `gorm:"not null;default:0" json:"commissionAmount"`
	Status                string         `gorm:"size:50;not null;default:'pending';index" json:"commissionStatus"`
	CalculationMethodUsed string         `gorm:"size:50;not null" json:"calculationMethodUsed"`
	CalculationDetails    datatypes.JSON `json:"calculationDetails"`
	CancellationReason    string         `gorm:"size:255" json:"cancellationReason,omitempty"`

	EarnedDate          time.Time  `gorm:"not null;index" json:"earnedDate"`
	PaidDate            *time.Time `json:"paidDate"`
	CommissionPaymentID *uint      `gorm:"index" json:"commissionPaymentId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommissionPayment is a payout batch settling a set of pending entries.
// PaymentAmount always equals the sum of the settled entries' amounts.
type CommissionPayment struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	InfluencerID         uint      `gorm:"not null;index" json:"influencerId"`
	PaymentAmount        float64   `gorm:"not null;default:0" json:"paymentAmount"`
	PaymentDate          time.Time `gorm:"not null" json:"paymentDate"`
	PaymentMethod        string    `gorm:"size:100" json:"paymentMethod"`
	TransactionReference string    `gorm:"size:100" json:"transactionReference"`
	Notes                string    `gorm:"size:500" json:"notes"`

	Entries []CommissionEntry `gorm:"foreignKey:CommissionPaymentID" json:"entries,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate creates the ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&CommissionEntry{}, &CommissionPayment{})
}
