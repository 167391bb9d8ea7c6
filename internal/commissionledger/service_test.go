package commissionledger

import (
	"errors"
	"testing"

	"github.com/NovaSiteWorks/api-referral/internal/commissioncalc"
	"github.com/NovaSiteWorks/api-referral/internal/commissionrule"
)

func entry(id uint, amount float64, status string) CommissionEntry {
	return CommissionEntry{ID: id, InfluencerID: 1, CommissionAmount: amount, Status: status}
}

func TestValidatePayout(t *testing.T) {
	cases := []struct {
		name    string
		entries []CommissionEntry
		ids     []uint
		amount  float64
		wantErr error
	}{
		{
			"two pending entries, exact amount",
			[]CommissionEntry{entry(1, 50, StatusPending), entry(2, 80, StatusPending)},
			[]uint{1, 2}, 130, nil,
		},
		{
			"single entry",
			[]CommissionEntry{entry(1, 99.99, StatusPending)},
			[]uint{1}, 99.99, nil,
		},
		{
			"missing entry",
			[]CommissionEntry{entry(1, 50, StatusPending)},
			[]uint{1, 2}, 50, ErrEntryNotFound,
		},
		{
			"already paid entry",
			[]CommissionEntry{entry(1, 50, StatusPending), entry(2, 80, StatusPaid)},
			[]uint{1, 2}, 130, ErrInvalidTransition,
		},
		{
			"cancelled entry",
			[]CommissionEntry{entry(1, 50, StatusCancelled)},
			[]uint{1}, 50, ErrInvalidTransition,
		},
		{
			"amount too low",
			[]CommissionEntry{entry(1, 50, StatusPending), entry(2, 80, StatusPending)},
			[]uint{1, 2}, 100, ErrAmountMismatch,
		},
		{
			"amount too high",
			[]CommissionEntry{entry(1, 50, StatusPending)},
			[]uint{1}, 50.01, ErrAmountMismatch,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePayout(tc.entries, tc.ids, tc.amount)
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func paymentRule(typ commissionrule.Type, method commissionrule.Method) commissionrule.Rule {
	r := commissionrule.Rule{
		Type:    typ,
		Method:  method,
		Trigger: commissionrule.TriggerFirstPayment,
	}
	if typ == commissionrule.TypePercentage {
		r.Rate = 10
	} else {
		r.FixedRate = 100
	}
	return r
}

func TestDedupEventIDCollapsesRepeatPayments(t *testing.T) {
	p1 := TriggerEvent{Trigger: commissionrule.TriggerFirstPayment, EventID: "payment-1"}
	p2 := TriggerEvent{Trigger: commissionrule.TriggerFirstPayment, EventID: "payment-2"}

	cases := []struct {
		name         string
		rule         commissionrule.Rule
		wantDistinct bool
	}{
		{"percentage over cumulative payments recomputes", paymentRule(commissionrule.TypePercentage, commissionrule.MethodPaymentsReceived), true},
		{"percentage of first payment earns once", paymentRule(commissionrule.TypePercentage, commissionrule.MethodFirstPayment), false},
		{"percentage of project value earns once", paymentRule(commissionrule.TypePercentage, commissionrule.MethodProjectValue), false},
		{"fixed amount earns once", paymentRule(commissionrule.TypeFixed, commissionrule.MethodFirstPayment), false},
		{"fixed amount earns once regardless of method", paymentRule(commissionrule.TypeFixed, commissionrule.MethodProjectValue), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			k1, k2 := dedupEventID(tc.rule, p1), dedupEventID(tc.rule, p2)
			if tc.wantDistinct && k1 == k2 {
				t.Errorf("keys %q and %q collide; payments should recompute", k1, k2)
			}
			if !tc.wantDistinct && k1 != k2 {
				t.Errorf("keys %q and %q differ; a second payment would mint a second entry", k1, k2)
			}
		})
	}
}

func TestDedupEventIDKeepsNonPaymentKeys(t *testing.T) {
	rule := paymentRule(commissionrule.TypeFixed, commissionrule.MethodProjectValue)
	rule.Trigger = commissionrule.TriggerSignup

	event := TriggerEvent{Trigger: commissionrule.TriggerSignup, EventID: "signup"}
	if got := dedupEventID(rule, event); got != "signup" {
		t.Errorf("dedupEventID = %q, want the event's own key for non-payment triggers", got)
	}

	rule.Trigger = commissionrule.TriggerProjectCompletion
	event = TriggerEvent{Trigger: commissionrule.TriggerProjectCompletion, EventID: "project_completion"}
	if got := dedupEventID(rule, event); got != "project_completion" {
		t.Errorf("dedupEventID = %q, want the event's own key for non-payment triggers", got)
	}
}

func TestRecordEarnedSkipsMismatchedTrigger(t *testing.T) {
	s := NewService(&Repository{})
	rule := commissionrule.Rule{
		Type:    commissionrule.TypePercentage,
		Rate:    10,
		Method:  commissionrule.MethodProjectValue,
		Trigger: commissionrule.TriggerProjectCompletion,
	}

	event := TriggerEvent{Trigger: commissionrule.TriggerSignup, EventID: "signup"}
	entry, err := s.RecordEarned(1, 2, rule, commissioncalc.Context{ProjectValue: 100}, event)
	if err != nil {
		t.Fatalf("RecordEarned: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil for a non-matching trigger", entry)
	}
}

func TestRecordEarnedRejectsInvalidRule(t *testing.T) {
	s := NewService(&Repository{})
	rule := commissionrule.Rule{Type: "flat"}

	event := TriggerEvent{Trigger: commissionrule.TriggerSignup, EventID: "signup"}
	if _, err := s.RecordEarned(1, 2, rule, commissioncalc.Context{}, event); !errors.Is(err, commissionrule.ErrInvalidRule) {
		t.Errorf("err = %v, want ErrInvalidRule", err)
	}
}

func TestValidatePayoutToleratesFloatDrift(t *testing.T) {
	// Three amounts whose binary sum is 130.00000000000001; the comparison
	// happens after rounding both sides to cents.
	entries := []CommissionEntry{
		entry(1, 43.35, StatusPending),
		entry(2, 43.35, StatusPending),
		entry(3, 43.30, StatusPending),
	}
	if err := validatePayout(entries, []uint{1, 2, 3}, 130); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
