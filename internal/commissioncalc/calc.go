// Package commissioncalc computes commission amounts from a resolved rule
// and a financial context. It is pure: no storage, no side effects.
package commissioncalc

import (
	"fmt"
	"math"

	"github.com/NovaSiteWorks/api-referral/internal/commissionrule"
)

// Context carries the financial quantities a calculation may draw from.
type Context struct {
	ProjectValue          float64 `json:"projectValue"`
	PaymentsReceivedTotal float64 `json:"paymentsReceivedTotal"`
	FirstPaymentAmount    float64 `json:"firstPaymentAmount"`
}

// Result explains one calculation: the base amount before clamps, the final
// amount after minimum/cap and rounding, and which clamps fired.
type Result struct {
	Method         commissionrule.Method `json:"method"`
	BaseAmount     float64               `json:"baseAmount"`
	FinalAmount    float64               `json:"finalAmount"`
	MinimumApplied bool                  `json:"minimumApplied"`
	CapApplied     bool                  `json:"capApplied"`
}

// Calculate resolves the base amount for the rule variant, applies the
// minimum then the cap, and rounds half-up to the cent.
func Calculate(rule commissionrule.Rule, fin Context) (Result, error) {
	if err := rule.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{Method: rule.Method}

	switch rule.Type {
	case commissionrule.TypeFixed:
		res.BaseAmount = rule.FixedRate
	case commissionrule.TypePercentage:
		base, err := baseQuantity(rule.Method, fin)
		if err != nil {
			return Result{}, err
		}
		res.BaseAmount = rule.Rate / 100 * base
	default:
		return Result{}, fmt.Errorf("unknown commission type %q", rule.Type)
	}

	final := res.BaseAmount
	if rule.Minimum != nil && final < *rule.Minimum {
		final = *rule.Minimum
		res.MinimumApplied = true
	}
	if rule.Cap != nil && final > *rule.Cap {
		final = *rule.Cap
		res.CapApplied = true
	}
	res.FinalAmount = RoundToCents(final)

	return res, nil
}

func baseQuantity(method commissionrule.Method, fin Context) (float64, error) {
	switch method {
	case commissionrule.MethodProjectValue:
		return fin.ProjectValue, nil
	case commissionrule.MethodPaymentsReceived:
		return fin.PaymentsReceivedTotal, nil
	case commissionrule.MethodFirstPayment:
		return fin.FirstPaymentAmount, nil
	default:
		return 0, fmt.Errorf("unknown calculation method %q", method)
	}
}

// RoundToCents rounds half-up to the smallest currency unit.
func RoundToCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
