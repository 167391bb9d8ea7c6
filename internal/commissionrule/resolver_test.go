package commissionrule

import (
	"testing"
	"time"
)

func u(v uint) *uint { return &v }

func override(id uint, createdAt time.Time, mutate func(*Override)) Override {
	o := Override{
		ID:                id,
		InfluencerID:      1,
		CommissionType:    string(TypePercentage),
		Rate:              5,
		CalculationMethod: string(MethodProjectValue),
		Trigger:           string(TriggerFirstPayment),
		CreatedAt:         createdAt,
	}
	if mutate != nil {
		mutate(&o)
	}
	return o
}

func TestPickOverridePrecedence(t *testing.T) {
	now := time.Now()
	customerID := u(42)

	influencerWide := override(1, now.Add(-3*time.Hour), nil)
	codeScoped := override(2, now.Add(-2*time.Hour), func(o *Override) { o.ReferralCode = "ANNA10" })
	customerScoped := override(3, now.Add(-1*time.Hour), func(o *Override) { o.CustomerID = u(42) })

	all := []Override{influencerWide, codeScoped, customerScoped}

	cases := []struct {
		name       string
		overrides  []Override
		customerID *uint
		code       string
		wantID     uint
	}{
		{"customer beats code and influencer-wide", all, customerID, "ANNA10", 3},
		{"code beats influencer-wide", all, nil, "ANNA10", 2},
		{"influencer-wide when nothing more specific matches", all, nil, "", 1},
		{"customer-scoped ignored for other customers", all, u(7), "", 1},
		{"code-scoped ignored for other codes", []Override{influencerWide, codeScoped}, nil, "OTHER", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PickOverride(tc.overrides, tc.customerID, tc.code, now)
			if got == nil {
				t.Fatal("PickOverride returned nil")
			}
			if got.ID != tc.wantID {
				t.Errorf("picked override %d, want %d", got.ID, tc.wantID)
			}
		})
	}
}

func TestPickOverrideLatestCreatedWinsTies(t *testing.T) {
	now := time.Now()
	older := override(1, now.Add(-2*time.Hour), func(o *Override) { o.CustomerID = u(42) })
	newer := override(2, now.Add(-1*time.Hour), func(o *Override) { o.CustomerID = u(42) })

	got := PickOverride([]Override{older, newer}, u(42), "", now)
	if got == nil || got.ID != 2 {
		t.Errorf("picked %+v, want the most recently created override", got)
	}

	// Order in the slice must not matter.
	got = PickOverride([]Override{newer, older}, u(42), "", now)
	if got == nil || got.ID != 2 {
		t.Errorf("picked %+v, want the most recently created override regardless of order", got)
	}
}

func TestPickOverrideValidityWindow(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	expired := override(1, past, func(o *Override) { o.ValidUntil = &past })
	notYet := override(2, past, func(o *Override) { o.ValidFrom = &future })
	active := override(3, past, func(o *Override) { o.ValidFrom = &past; o.ValidUntil = &future })

	got := PickOverride([]Override{expired, notYet, active}, nil, "", now)
	if got == nil || got.ID != 3 {
		t.Errorf("picked %+v, want the override whose window contains now", got)
	}

	if got := PickOverride([]Override{expired, notYet}, nil, "", now); got != nil {
		t.Errorf("picked %+v, want nil when every window excludes now", got)
	}
}

func TestPickOverrideNoCandidates(t *testing.T) {
	if got := PickOverride(nil, nil, "", time.Now()); got != nil {
		t.Errorf("picked %+v from an empty set", got)
	}
}

func TestOverrideRuleNormalizes(t *testing.T) {
	o := override(1, time.Now(), func(o *Override) {
		o.CommissionType = string(TypeFixed)
		o.Rate = 12 // stale, must not survive
		o.FixedRate = 75
	})
	rule := o.Rule()
	if rule.Type != TypeFixed || rule.Rate != 0 || rule.FixedRate != 75 {
		t.Errorf("Rule() = %+v, want normalized fixed rule", rule)
	}
}
