package customer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NovaSiteWorks/api-referral/internal/commissioncalc"
	"github.com/NovaSiteWorks/api-referral/internal/commissionledger"
	"github.com/NovaSiteWorks/api-referral/internal/commissionrule"
	"github.com/NovaSiteWorks/api-referral/internal/influencer"
	"github.com/NovaSiteWorks/api-referral/internal/logger"
	"github.com/NovaSiteWorks/api-referral/internal/referral"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handler serves customer CRUD and is the trigger-event source for the
// commission engine: signups, payments and project completions recorded
// here feed the ledger in the same transaction.
type Handler struct {
	Repo        *Repository
	Influencers *influencer.Repository
	Overrides   *commissionrule.Repository
	Ledger      *commissionledger.Service
	Referrals   *referral.Service
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		Repo:        NewRepository(db),
		Influencers: influencer.NewRepository(db),
		Overrides:   commissionrule.NewRepository(db),
		Ledger:      commissionledger.NewService(commissionledger.NewRepository(db)),
		Referrals:   referral.NewService(db),
	}
}

type createCustomerRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Company      string  `json:"company"`
	ProjectValue float64 `json:"projectValue"`
	ReferralCode string  `json:"referralCode"`
}

type createPaymentRequest struct {
	Amount      float64    `json:"amount"`
	PaymentDate *time.Time `json:"paymentDate"`
	Method      string     `json:"method"`
	Notes       string     `json:"notes"`
}

// POST /customers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	c := Customer{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Company:       req.Company,
		ProjectValue:  req.ProjectValue,
		ProjectStatus: ProjectActive,
		ReferralCode:  req.ReferralCode,
	}

	err := h.Repo.DB.Transaction(func(tx *gorm.DB) error {
		repo := h.Repo.WithDB(tx)

		if req.ReferralCode != "" {
			inf, err := h.Influencers.WithDB(tx).FindByCode(req.ReferralCode)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				logger.Warn("customer signup with unknown referral code %q", req.ReferralCode)
			} else {
				c.InfluencerID = &inf.ID
			}
		}

		if err := repo.Create(&c); err != nil {
			return err
		}

		if c.InfluencerID != nil {
			if _, err := h.Referrals.WithDB(tx).RecordConversion(c.ReferralCode, c.ID); err != nil {
				return err
			}
			if err := h.emitTrigger(tx, &c, commissionledger.TriggerEvent{
				Trigger: commissionrule.TriggerSignup,
				EventID: "signup",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		http.Error(w, "failed to create customer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(c)
}

// GET /customers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List()
	if err != nil {
		http.Error(w, "failed to list customers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// GET /customers/{id}
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid customer ID", http.StatusBadRequest)
		return
	}

	c, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "customer not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// PUT /customers/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid customer ID", http.StatusBadRequest)
		return
	}

	existing, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "customer not found", http.StatusNotFound)
		return
	}

	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Company = req.Company
	existing.ProjectValue = req.ProjectValue

	if err := h.Repo.Update(existing); err != nil {
		http.Error(w, "failed to update customer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(existing)
}

// PATCH /customers/{id}/project-status
// Marking a project completed emits the project_completion trigger.
func (h *Handler) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid customer ID", http.StatusBadRequest)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	allowed := map[string]bool{
		ProjectActive:    true,
		ProjectCompleted: true,
		ProjectRejected:  true,
	}
	if !allowed[payload.Status] {
		http.Error(w, "invalid project status. Use 'active', 'completed' or 'rejected'.", http.StatusBadRequest)
		return
	}

	c, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "customer not found", http.StatusNotFound)
		return
	}

	err = h.Repo.DB.Transaction(func(tx *gorm.DB) error {
		if err := h.Repo.WithDB(tx).UpdateProjectStatus(c.ID, payload.Status); err != nil {
			return err
		}
		if payload.Status == ProjectCompleted && c.InfluencerID != nil {
			return h.emitTrigger(tx, c, commissionledger.TriggerEvent{
				Trigger: commissionrule.TriggerProjectCompletion,
				EventID: "project_completion",
			})
		}
		return nil
	})
	if err != nil {
		http.Error(w, "failed to update project status", http.StatusInternalServerError)
		return
	}

	c.ProjectStatus = payload.Status
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// POST /customers/{id}/payments
// Each payment emits a first_payment trigger event keyed by the payment
// row, so payments_received rules recompute per payment while
// first_payment rules stay keyed to the customer.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid customer ID", http.StatusBadRequest)
		return
	}

	c, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "customer not found", http.StatusNotFound)
		return
	}

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "payment amount must be positive", http.StatusBadRequest)
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	p := Payment{
		CustomerID:  c.ID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Method:      req.Method,
		Notes:       req.Notes,
	}

	err = h.Repo.DB.Transaction(func(tx *gorm.DB) error {
		if err := h.Repo.WithDB(tx).CreatePayment(&p); err != nil {
			return err
		}
		if c.InfluencerID == nil {
			return nil
		}
		return h.emitTrigger(tx, c, commissionledger.TriggerEvent{
			Trigger: commissionrule.TriggerFirstPayment,
			EventID: fmt.Sprintf("payment-%d", p.ID),
		})
	})
	if err != nil {
		http.Error(w, "failed to record payment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// GET /customers/{id}/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid customer ID", http.StatusBadRequest)
		return
	}

	payments, err := h.Repo.ListPayments(uint(id))
	if err != nil {
		http.Error(w, "failed to list payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payments)
}

// emitTrigger resolves the effective rule for the customer's influencer and
// records the earned commission inside the caller's transaction. A rule
// whose trigger does not match the event records nothing. A soft-deleted
// influencer stops earning but must not block the customer write that
// carries the event, so accrual is skipped rather than failed.
func (h *Handler) emitTrigger(tx *gorm.DB, c *Customer, event commissionledger.TriggerEvent) error {
	inf, err := h.Influencers.WithDB(tx).FindByID(*c.InfluencerID)
	if err != nil {
		if accrualSkipped(err) {
			logger.Warn("skipping commission accrual for customer %d: influencer %d no longer exists", c.ID, *c.InfluencerID)
			return nil
		}
		return err
	}

	rule, err := h.Overrides.WithDB(tx).Resolve(inf.ID, inf.DefaultRule(), &c.ID, c.ReferralCode, time.Now())
	if err != nil {
		return err
	}

	repo := h.Repo.WithDB(tx)
	total, err := repo.SumPayments(c.ID)
	if err != nil {
		return err
	}
	first, err := repo.FirstPaymentAmount(c.ID)
	if err != nil {
		return err
	}

	entry, err := h.Ledger.WithDB(tx).RecordEarned(inf.ID, c.ID, rule, commissioncalc.Context{
		ProjectValue:          c.ProjectValue,
		PaymentsReceivedTotal: total,
		FirstPaymentAmount:    first,
	}, event)
	if err != nil {
		return err
	}
	if entry != nil {
		logger.Info("commission entry %d recorded for influencer %d (customer %d, %s)",
			entry.ID, inf.ID, c.ID, event.Trigger)
	}
	return nil
}

// accrualSkipped reports whether an influencer lookup failure means the
// account is gone (deleted after the referral) rather than the store
// failing. Gone accounts skip accrual; store failures abort the caller's
// transaction.
func accrualSkipped(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
