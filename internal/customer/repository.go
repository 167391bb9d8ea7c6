package customer

import (
	"errors"

	"gorm.io/gorm"
)

// Repository encapsulates customer and payment storage access.
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

/* ============================== Customers ============================== */

// Create inserts a new customer.
func (r *Repository) Create(c *Customer) error {
	return r.DB.Create(c).Error
}

// FindByID returns one customer by ID.
func (r *Repository) FindByID(id uint) (*Customer, error) {
	var c Customer
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all customers, newest first.
func (r *Repository) List() ([]Customer, error) {
	var list []Customer
	err := r.DB.Order("created_at DESC").Find(&list).Error
	return list, err
}

// Update saves all fields of an existing customer.
func (r *Repository) Update(c *Customer) error {
	return r.DB.Save(c).Error
}

// UpdateProjectStatus changes only the project status.
func (r *Repository) UpdateProjectStatus(id uint, status string) error {
	return r.DB.Model(&Customer{}).
		Where("id = ?", id).
		Update("project_status", status).Error
}

/* ============================== Payments ============================== */

// CreatePayment inserts a payment row.
func (r *Repository) CreatePayment(p *Payment) error {
	return r.DB.Create(p).Error
}

// ListPayments returns a customer's payments, oldest first.
func (r *Repository) ListPayments(customerID uint) ([]Payment, error) {
	var list []Payment
	err := r.DB.
		Where("customer_id = ?", customerID).
		Order("payment_date ASC").
		Find(&list).Error
	return list, err
}

// SumPayments totals all payments received from a customer.
func (r *Repository) SumPayments(customerID uint) (float64, error) {
	var total float64
	err := r.DB.Model(&Payment{}).
		Where("customer_id = ?", customerID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// FirstPaymentAmount returns the amount of the customer's earliest payment,
// zero when none exists.
func (r *Repository) FirstPaymentAmount(customerID uint) (float64, error) {
	var p Payment
	err := r.DB.
		Where("customer_id = ?", customerID).
		Order("payment_date ASC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return p.Amount, nil
}
