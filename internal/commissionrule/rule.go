package commissionrule

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRule marks a rule that fails validation.
var ErrInvalidRule = errors.New("invalid commission rule")

// Type discriminates the two rule variants.
type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

// Method selects the financial quantity a percentage commission is
// computed against.
type Method string

const (
	MethodProjectValue     Method = "project_value"
	MethodPaymentsReceived Method = "payments_received"
	MethodFirstPayment     Method = "first_payment"
)

// Trigger is the business event that causes a commission to be calculated.
type Trigger string

const (
	TriggerSignup            Trigger = "signup"
	TriggerFirstPayment      Trigger = "first_payment"
	TriggerProjectCompletion Trigger = "project_completion"
)

// Rule is the effective configuration used for one calculation. It is a
// tagged variant over {percentage, fixed}: Rate is meaningful only for
// percentage rules, FixedRate only for fixed rules.
type Rule struct {
	Type      Type     `json:"commissionType" validate:"required,oneof=percentage fixed"`
	Rate      float64  `json:"rate" validate:"gte=0,lte=100"`
	FixedRate float64  `json:"fixedRate" validate:"gte=0"`
	Method    Method   `json:"calculationMethod" validate:"required,oneof=project_value payments_received first_payment"`
	Trigger   Trigger  `json:"trigger" validate:"required,oneof=signup first_payment project_completion"`
	Cap       *float64 `json:"cap,omitempty" validate:"omitempty,gte=0"`
	Minimum   *float64 `json:"minimum,omitempty" validate:"omitempty,gte=0"`
}

var validate = validator.New()

// Validate checks field constraints plus the cross-field invariants the
// struct tags cannot express.
func (r Rule) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if r.Cap != nil && r.Minimum != nil && *r.Cap < *r.Minimum {
		return fmt.Errorf("%w: cap (%.2f) below minimum (%.2f)", ErrInvalidRule, *r.Cap, *r.Minimum)
	}
	return nil
}

// Normalized returns a copy with the field of the inactive variant zeroed,
// so a fixed rule never carries a stale percentage rate (and vice versa).
func (r Rule) Normalized() Rule {
	switch r.Type {
	case TypeFixed:
		r.Rate = 0
	case TypePercentage:
		r.FixedRate = 0
	}
	return r
}
