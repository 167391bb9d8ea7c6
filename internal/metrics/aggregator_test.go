package metrics

import "testing"

func TestConversionRate(t *testing.T) {
	cases := []struct {
		converted, total int64
		want             float64
	}{
		{0, 0, 0},
		{0, 10, 0},
		{5, 10, 0.5},
		{10, 10, 1},
		{1, 3, 1.0 / 3.0},
	}
	for _, tc := range cases {
		if got := ConversionRate(tc.converted, tc.total); got != tc.want {
			t.Errorf("ConversionRate(%d, %d) = %v, want %v", tc.converted, tc.total, got, tc.want)
		}
	}
}

func TestAccumulateGlobal(t *testing.T) {
	stats := []InfluencerStats{
		{InfluencerID: 1, TotalReferrals: 3, TotalCommissionEarned: 500, UnpaidCommission: 200},
		{InfluencerID: 2, TotalReferrals: 1, TotalCommissionEarned: 80, UnpaidCommission: 80},
		{InfluencerID: 3},
	}

	g := AccumulateGlobal(stats)

	if g.TotalInfluencers != 3 {
		t.Errorf("TotalInfluencers = %d, want 3", g.TotalInfluencers)
	}
	if g.TotalReferrals != 4 {
		t.Errorf("TotalReferrals = %d, want 4", g.TotalReferrals)
	}
	if g.TotalPendingCommissions != 280 {
		t.Errorf("TotalPendingCommissions = %v, want 280", g.TotalPendingCommissions)
	}
	if g.TotalPaidCommissions != 300 {
		t.Errorf("TotalPaidCommissions = %v, want 300", g.TotalPaidCommissions)
	}

	// The pending total is by construction the sum of each influencer's
	// unpaid commission.
	var sum float64
	for _, s := range stats {
		sum += s.UnpaidCommission
	}
	if g.TotalPendingCommissions != sum {
		t.Errorf("pending total %v does not reconcile with per-influencer sum %v", g.TotalPendingCommissions, sum)
	}
}

func TestAccumulateGlobalEmpty(t *testing.T) {
	if g := AccumulateGlobal(nil); g != (GlobalStats{}) {
		t.Errorf("AccumulateGlobal(nil) = %+v, want zero value", g)
	}
}
