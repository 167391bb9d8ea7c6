package commissionledger

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsulates ledger storage access.
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

/* ============================== Entries ============================== */

// CreateEntry inserts a new ledger entry.
func (r *Repository) CreateEntry(e *CommissionEntry) error {
	return r.DB.Create(e).Error
}

// FindEntryByID returns one entry by ID.
func (r *Repository) FindEntryByID(id uint) (*CommissionEntry, error) {
	var e CommissionEntry
	if err := r.DB.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// FindEntryByEventKey looks up an entry by its idempotency key.
func (r *Repository) FindEntryByEventKey(influencerID, customerID uint, trigger, eventID string) (*CommissionEntry, error) {
	var e CommissionEntry
	err := r.DB.
		Where("influencer_id = ? AND customer_id = ? AND trigger = ? AND trigger_event_id = ?",
			influencerID, customerID, trigger, eventID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByInfluencer returns all entries for an influencer, optionally
// filtered by status, oldest earned first.
func (r *Repository) ListByInfluencer(influencerID uint, status string) ([]CommissionEntry, error) {
	q := r.DB.Where("influencer_id = ?", influencerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []CommissionEntry
	err := q.Order("earned_date ASC").Find(&list).Error
	return list, err
}

// SelectPending returns the influencer's pending entries, oldest first,
// for payout selection.
func (r *Repository) SelectPending(influencerID uint) ([]CommissionEntry, error) {
	return r.ListByInfluencer(influencerID, StatusPending)
}

// LockEntriesForPayout loads the given entries under FOR UPDATE so two
// concurrent payout batches cannot settle overlapping pending sets.
func (r *Repository) LockEntriesForPayout(influencerID uint, entryIDs []uint) ([]CommissionEntry, error) {
	var list []CommissionEntry
	err := r.DB.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("influencer_id = ? AND id IN ?", influencerID, entryIDs).
		Find(&list).Error
	return list, err
}

// LockEntryByID loads one entry under FOR UPDATE.
func (r *Repository) LockEntryByID(id uint) (*CommissionEntry, error) {
	var e CommissionEntry
	err := r.DB.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEntry saves all fields of an existing entry.
func (r *Repository) UpdateEntry(e *CommissionEntry) error {
	return r.DB.Save(e).Error
}

/* ============================== Payments ============================== */

// CreatePayment inserts a payout batch.
func (r *Repository) CreatePayment(p *CommissionPayment) error {
	return r.DB.Create(p).Error
}

// FindPaymentByID returns one payout batch with its settled entries.
func (r *Repository) FindPaymentByID(id uint) (*CommissionPayment, error) {
	var p CommissionPayment
	if err := r.DB.Preload("Entries").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPaymentsByInfluencer returns the influencer's payout history,
// newest first.
func (r *Repository) ListPaymentsByInfluencer(influencerID uint) ([]CommissionPayment, error) {
	var list []CommissionPayment
	err := r.DB.
		Preload("Entries").
		Where("influencer_id = ?", influencerID).
		Order("payment_date DESC").
		Find(&list).Error
	return list, err
}
