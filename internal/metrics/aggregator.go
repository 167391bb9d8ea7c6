// Package metrics derives influencer-level and global summaries from the
// ledger, click and customer tables. Everything here is read-only; the
// stored total_referrals counter is never consulted, the click table is
// the source of truth.
package metrics

import (
	"gorm.io/gorm"
)

// InfluencerStats summarizes one influencer's referral performance.
type InfluencerStats struct {
	InfluencerID          uint    `json:"influencerId"`
	ReferralCode          string  `json:"referralCode"`
	TotalClicks           int64   `json:"totalClicks"`
	TotalReferrals        int64   `json:"totalReferrals"`
	ActiveProjects        int64   `json:"activeProjects"`
	TotalCommissionEarned float64 `json:"totalCommissionEarned"`
	UnpaidCommission      float64 `json:"unpaidCommission"`
	AverageProjectValue   float64 `json:"averageProjectValue"`
	ConversionRate        float64 `json:"conversionRate"`
}

// GlobalStats summarizes the whole program.
type GlobalStats struct {
	TotalInfluencers        int64   `json:"totalInfluencers"`
	TotalReferrals          int64   `json:"totalReferrals"`
	TotalPendingCommissions float64 `json:"totalPendingCommissions"`
	TotalPaidCommissions    float64 `json:"totalPaidCommissions"`
}

// Aggregator computes summaries with plain SQL aggregation over the other
// packages' tables.
type Aggregator struct {
	DB *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{DB: db}
}

type influencerRow struct {
	ID           uint
	ReferralCode string
}

// ForInfluencer computes one influencer's summary.
func (a *Aggregator) ForInfluencer(influencerID uint) (*InfluencerStats, error) {
	var row influencerRow
	err := a.DB.Table("influencers").
		Select("id, referral_code").
		Where("id = ? AND deleted_at IS NULL", influencerID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return a.forRow(row)
}

// ForAll computes the summary of every live influencer.
func (a *Aggregator) ForAll() ([]InfluencerStats, error) {
	var rows []influencerRow
	err := a.DB.Table("influencers").
		Select("id, referral_code").
		Where("deleted_at IS NULL").
		Order("id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]InfluencerStats, 0, len(rows))
	for _, row := range rows {
		s, err := a.forRow(row)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *s)
	}
	return stats, nil
}

func (a *Aggregator) forRow(row influencerRow) (*InfluencerStats, error) {
	s := &InfluencerStats{InfluencerID: row.ID, ReferralCode: row.ReferralCode}

	err := a.DB.Table("referral_clicks").
		Where("referral_code = ?", row.ReferralCode).
		Count(&s.TotalClicks).Error
	if err != nil {
		return nil, err
	}
	err = a.DB.Table("referral_clicks").
		Where("referral_code = ? AND converted = ?", row.ReferralCode, true).
		Count(&s.TotalReferrals).Error
	if err != nil {
		return nil, err
	}
	s.ConversionRate = ConversionRate(s.TotalReferrals, s.TotalClicks)

	err = a.DB.Table("commission_entries").
		Where("influencer_id = ? AND status IN ?", row.ID, []string{"pending", "paid"}).
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&s.TotalCommissionEarned).Error
	if err != nil {
		return nil, err
	}
	err = a.DB.Table("commission_entries").
		Where("influencer_id = ? AND status = ?", row.ID, "pending").
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&s.UnpaidCommission).Error
	if err != nil {
		return nil, err
	}

	err = a.DB.Table("customers").
		Where("influencer_id = ? AND deleted_at IS NULL AND project_status NOT IN ?",
			row.ID, []string{"completed", "rejected"}).
		Count(&s.ActiveProjects).Error
	if err != nil {
		return nil, err
	}
	err = a.DB.Table("customers").
		Where("influencer_id = ? AND deleted_at IS NULL", row.ID).
		Select("COALESCE(AVG(project_value), 0)").
		Scan(&s.AverageProjectValue).Error
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Global computes program-wide totals straight from the tables. By
// construction they reconcile with the per-influencer stats: both read the
// same status column.
func (a *Aggregator) Global() (*GlobalStats, error) {
	g := &GlobalStats{}

	err := a.DB.Table("influencers").
		Where("deleted_at IS NULL").
		Count(&g.TotalInfluencers).Error
	if err != nil {
		return nil, err
	}
	err = a.DB.Table("referral_clicks").
		Where("converted = ?", true).
		Count(&g.TotalReferrals).Error
	if err != nil {
		return nil, err
	}
	err = a.DB.Table("commission_entries").
		Where("status = ?", "pending").
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&g.TotalPendingCommissions).Error
	if err != nil {
		return nil, err
	}
	err = a.DB.Table("commission_entries").
		Where("status = ?", "paid").
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&g.TotalPaidCommissions).Error
	if err != nil {
		return nil, err
	}

	return g, nil
}

// ConversionRate is converted clicks over total clicks, zero when no
// clicks were tracked.
func ConversionRate(converted, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(converted) / float64(total)
}

// AccumulateGlobal folds per-influencer stats into program totals. The
// pending sum here always equals Global().TotalPendingCommissions, since
// every ledger entry belongs to exactly one influencer.
func AccumulateGlobal(stats []InfluencerStats) GlobalStats {
	g := GlobalStats{TotalInfluencers: int64(len(stats))}
	for _, s := range stats {
		g.TotalReferrals += s.TotalReferrals
		g.TotalPendingCommissions += s.UnpaidCommission
		g.TotalPaidCommissions += s.TotalCommissionEarned - s.UnpaidCommission
	}
	return g
}
