package influencer

import (
	"errors"

	"gorm.io/gorm"
)

// ErrCodeInUse marks a referral code already owned by another influencer.
var ErrCodeInUse = errors.New("referral code already in use")

// Repository encapsulates influencer storage access.
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

// Create inserts a new influencer after checking the code is free.
func (r *Repository) Create(i *Influencer) error {
	free, err := r.codeAvailable(i.ReferralCode, 0)
	if err != nil {
		return err
	}
	if !free {
		return ErrCodeInUse
	}
	if err := r.DB.Create(i).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCodeInUse
		}
		return err
	}
	return nil
}

// FindByID returns one influencer by ID.
func (r *Repository) FindByID(id uint) (*Influencer, error) {
	var i Influencer
	if err := r.DB.First(&i, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

// FindByCode returns the influencer owning a referral code.
func (r *Repository) FindByCode(code string) (*Influencer, error) {
	var i Influencer
	if err := r.DB.Where("referral_code = ?", code).First(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

// List returns all influencers.
func (r *Repository) List() ([]Influencer, error) {
	var list []Influencer
	err := r.DB.Order("created_at DESC").Find(&list).Error
	return list, err
}

// Update saves the edited influencer; a referral code change is rejected
// when the new code belongs to another account.
func (r *Repository) Update(i *Influencer) error {
	free, err := r.codeAvailable(i.ReferralCode, i.ID)
	if err != nil {
		return err
	}
	if !free {
		return ErrCodeInUse
	}
	return r.DB.Save(i).Error
}

// Delete soft-deletes the influencer; commission history is preserved.
func (r *Repository) Delete(id uint) error {
	res := r.DB.Delete(&Influencer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementReferrals bumps the stored counter. Call inside the same
// transaction as the conversion it counts.
func (r *Repository) IncrementReferrals(id uint) error {
	return r.DB.Model(&Influencer{}).
		Where("id = ?", id).
		UpdateColumn("total_referrals", gorm.Expr("total_referrals + 1")).Error
}

func (r *Repository) codeAvailable(code string, selfID uint) (bool, error) {
	if code == "" {
		return false, errors.New("referral code is required")
	}
	var count int64
	q := r.DB.Model(&Influencer{}).Where("referral_code = ?", code)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
