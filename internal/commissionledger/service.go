package commissionledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NovaSiteWorks/api-referral/internal/commissioncalc"
	"github.com/NovaSiteWorks/api-referral/internal/commissionrule"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Typed ledger failures. Handlers map these to HTTP statuses; callers may
// retry on their own, relying on RecordEarned's idempotency key.
var (
	ErrEntryNotFound     = errors.New("commission entry not found")
	ErrInvalidTransition = errors.New("invalid commission status transition")
	ErrAmountMismatch    = errors.New("payment amount does not match selected entries")
	ErrDuplicateEntry    = errors.New("commission entry already recorded for this trigger event")
)

// TriggerEvent identifies the business event a commission is earned on.
// EventID disambiguates repeat events of the same trigger (e.g. each
// payment row); signup and project completion occur at most once per
// customer so they use fixed markers.
type TriggerEvent struct {
	Trigger commissionrule.Trigger
	EventID string
}

// Service owns the ledger state machine. All mutations run inside a single
// transaction against the store.
type Service struct {
	Repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{Repo: repo}
}

// WithDB returns a copy of the service scoped to a specific *gorm.DB, so a
// caller can fold ledger writes into its own transaction.
func (s *Service) WithDB(db *gorm.DB) *Service {
	return &Service{Repo: s.Repo.WithDB(db)}
}

// RecordEarned creates exactly one pending entry per (influencer, customer,
// trigger event). Calling it twice for the same event returns the existing
// entry unchanged. A rule whose trigger does not match the event records
// nothing and returns (nil, nil).
//
// Payment-trigger events collapse to one key per customer unless the rule
// recomputes over cumulative payments (see dedupEventID), so later payments
// can never produce a second entry or change the amount.
func (s *Service) RecordEarned(influencerID, customerID uint, rule commissionrule.Rule, fin commissioncalc.Context, event TriggerEvent) (*CommissionEntry, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if event.Trigger != rule.Trigger {
		return nil, nil
	}

	eventID := dedupEventID(rule, event)

	result, err := commissioncalc.Calculate(rule, fin)
	if err != nil {
		return nil, err
	}
	details, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	var entry *CommissionEntry
	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)

		existing, err := repo.FindEntryByEventKey(influencerID, customerID, string(rule.Trigger), eventID)
		if err == nil {
			entry = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		e := &CommissionEntry{
			InfluencerID:          influencerID,
			CustomerID:            customerID,
			Trigger:               string(rule.Trigger),
			TriggerEventID:        eventID,
			ProjectValue:          fin.ProjectValue,
			CommissionRate:        rule.Rate,
			FixedRate:             rule.FixedRate,
			CommissionAmount:      result.FinalAmount,
			Status:                StatusPending,
			CalculationMethodUsed: string(rule.Method),
			CalculationDetails:    details,
			EarnedDate:            time.Now(),
		}
		if err := repo.CreateEntry(e); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEntry
			}
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// dedupEventID derives the idempotency key for an event. Per-payment event
// keys exist only so percentage rules over cumulative payments recompute as
// money comes in; every other rule earns at most once per trigger, so its
// key collapses to the trigger itself and repeat payments cannot mint
// further entries.
func dedupEventID(rule commissionrule.Rule, event TriggerEvent) string {
	if event.Trigger == commissionrule.TriggerFirstPayment &&
		(rule.Type != commissionrule.TypePercentage || rule.Method != commissionrule.MethodPaymentsReceived) {
		return string(commissionrule.TriggerFirstPayment)
	}
	return event.EventID
}

// SelectPending returns the influencer's pending entries, oldest first.
func (s *Service) SelectPending(influencerID uint) ([]CommissionEntry, error) {
	return s.Repo.SelectPending(influencerID)
}

// PayEntries settles a set of pending entries in one payout batch. The call
// is all-or-nothing: a missing entry, a non-pending entry or a mismatched
// amount fails the whole batch and no entry changes state.
func (s *Service) PayEntries(influencerID uint, entryIDs []uint, paymentAmount float64, method, reference, notes string) (*CommissionPayment, error) {
	if len(entryIDs) == 0 {
		return nil, fmt.Errorf("%w: no entries selected", ErrEntryNotFound)
	}
	if reference == "" {
		reference = uuid.NewString()
	}

	var payment *CommissionPayment
	err := s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)

		entries, err := repo.LockEntriesForPayout(influencerID, entryIDs)
		if err != nil {
			return err
		}
		if err := validatePayout(entries, entryIDs, paymentAmount); err != nil {
			return err
		}

		now := time.Now()
		p := &CommissionPayment{
			InfluencerID:         influencerID,
			PaymentAmount:        paymentAmount,
			PaymentDate:          now,
			PaymentMethod:        method,
			TransactionReference: reference,
			Notes:                notes,
		}
		if err := repo.CreatePayment(p); err != nil {
			return err
		}

		res := tx.Model(&CommissionEntry{}).
			Where("id IN ? AND status = ?", entryIDs, StatusPending).
			Updates(map[string]interface{}{
				"status":                StatusPaid,
				"paid_date":             &now,
				"commission_payment_id": p.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(entryIDs)) {
			// Lost a row between lock and update; abort the batch.
			return ErrInvalidTransition
		}

		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Repo.FindPaymentByID(payment.ID)
}

// Cancel transitions a pending entry to cancelled. Paid and cancelled
// entries are terminal.
func (s *Service) Cancel(entryID uint, reason string) (*CommissionEntry, error) {
	var entry *CommissionEntry
	err := s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)

		e, err := repo.LockEntryByID(entryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		if e.Status != StatusPending {
			return fmt.Errorf("%w: entry %d is %s", ErrInvalidTransition, e.ID, e.Status)
		}

		e.Status = StatusCancelled
		e.CancellationReason = reason
		if err := repo.UpdateEntry(e); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// validatePayout checks the batch invariants against the locked rows:
// every requested entry exists and belongs to the influencer, every entry
// is still pending, and the payment amount equals the sum of the entries'
// commission amounts to the cent.
func validatePayout(entries []CommissionEntry, entryIDs []uint, paymentAmount float64) error {
	if len(entries) != len(entryIDs) {
		return fmt.Errorf("%w: %d of %d selected entries found", ErrEntryNotFound, len(entries), len(entryIDs))
	}

	var sum float64
	for _, e := range entries {
		if e.Status != StatusPending {
			return fmt.Errorf("%w: entry %d is %s", ErrInvalidTransition, e.ID, e.Status)
		}
		sum += e.CommissionAmount
	}

	if commissioncalc.RoundToCents(sum) != commissioncalc.RoundToCents(paymentAmount) {
		return fmt.Errorf("%w: entries total %.2f, payment %.2f", ErrAmountMismatch, sum, paymentAmount)
	}
	return nil
}
