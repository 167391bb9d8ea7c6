package referral

import (
	"errors"
	"time"

	"github.com/NovaSiteWorks/api-referral/internal/influencer"
	"gorm.io/gorm"
)

// ErrUnknownCode marks a referral code no influencer owns. Click recording
// treats it softly; the handler decides whether to surface it.
var ErrUnknownCode = errors.New("unknown referral code")

// Service owns click recording and first-click conversion attribution.
type Service struct {
	Repo        *Repository
	Influencers *influencer.Repository
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		Repo:        NewRepository(db),
		Influencers: influencer.NewRepository(db),
	}
}

// WithDB returns a copy of the service scoped to a specific *gorm.DB, so a
// caller can fold attribution into its own transaction.
func (s *Service) WithDB(db *gorm.DB) *Service {
	return &Service{
		Repo:        s.Repo.WithDB(db),
		Influencers: s.Influencers.WithDB(db),
	}
}

// RecordClick appends an unconverted click for the code. Unknown codes
// return ErrUnknownCode and record nothing.
func (s *Service) RecordClick(code string) (*ReferralClick, error) {
	if _, err := s.Influencers.FindByCode(code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownCode
		}
		return nil, err
	}

	c := &ReferralClick{
		ReferralCode: code,
		ClickedAt:    time.Now(),
		Converted:    false,
	}
	if err := s.Repo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordConversion credits the earliest unconverted click for the code
// (first-click attribution) and bumps the influencer's referral counter in
// the same transaction. A customer that already converted is a no-op, so
// the counter can never be incremented twice for one customer. When no
// click was tracked the conversion is still recorded as a synthetic
// converted click, so direct signups with a code count as referrals.
func (s *Service) RecordConversion(code string, customerID uint) (*ReferralClick, error) {
	var click *ReferralClick
	err := s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		scoped := s.WithDB(tx)

		inf, err := scoped.Influencers.FindByCode(code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownCode
			}
			return err
		}

		if existing, err := scoped.Repo.FindConversionByCustomer(customerID); err == nil {
			click = existing
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		c, err := scoped.Repo.LockEarliestUnconverted(code)
		switch {
		case err == nil:
			c.Converted = true
			c.ConvertedCustomerID = &customerID
			if err := scoped.Repo.Update(c); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			c = &ReferralClick{
				ReferralCode:        code,
				ClickedAt:           now,
				Converted:           true,
				ConvertedCustomerID: &customerID,
			}
			if err := scoped.Repo.Create(c); err != nil {
				return err
			}
		default:
			return err
		}

		if err := scoped.Influencers.IncrementReferrals(inf.ID); err != nil {
			return err
		}
		click = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return click, nil
}
