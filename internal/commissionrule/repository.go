package commissionrule

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

// Repository encapsulates override storage and rule resolution.
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

/* ============================== CRUD ============================== */

// Create inserts a new override.
func (r *Repository) Create(o *Override) error {
	return r.DB.Create(o).Error
}

// FindByID returns one override by ID.
func (r *Repository) FindByID(id uint) (*Override, error) {
	var o Override
	if err := r.DB.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListForInfluencer returns all overrides registered for an influencer.
func (r *Repository) ListForInfluencer(influencerID uint) ([]Override, error) {
	var list []Override
	err := r.DB.Where("influencer_id = ?", influencerID).Find(&list).Error
	return list, err
}

// Update saves all fields of an existing override.
func (r *Repository) Update(o *Override) error {
	return r.DB.Save(o).Error
}

// DeleteByID removes an override; gorm.ErrRecordNotFound if nothing matched.
func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Delete(&Override{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

/* ============================ Resolution ============================ */

// PickOverride selects the single override applicable to the given
// customer/code at the evaluation time. Precedence: customer-scoped >
// code-scoped > influencer-wide; ties at the same specificity fall to the
// most recently created override. Returns nil when none applies.
func PickOverride(overrides []Override, customerID *uint, code string, at time.Time) *Override {
	rank := map[string]int{ScopeCustomer: 0, ScopeCode: 1, ScopeInfluencer: 2}

	candidates := make([]Override, 0, len(overrides))
	for _, o := range overrides {
		if o.ActiveAt(at) && o.Matches(customerID, code) {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := rank[candidates[i].Scope()], rank[candidates[j].Scope()]
		if ri != rj {
			return ri < rj
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return &candidates[0]
}

// Resolve returns the effective rule for an influencer at the evaluation
// time, falling back to the supplied defaults when no override applies.
// The caller is responsible for having resolved the influencer itself.
func (r *Repository) Resolve(influencerID uint, defaults Rule, customerID *uint, code string, at time.Time) (Rule, error) {
	overrides, err := r.ListForInfluencer(influencerID)
	if err != nil {
		return Rule{}, err
	}
	if o := PickOverride(overrides, customerID, code, at); o != nil {
		return o.Rule(), nil
	}
	return defaults.Normalized(), nil
}
