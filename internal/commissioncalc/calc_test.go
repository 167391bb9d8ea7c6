package commissioncalc

import (
	"errors"
	"testing"

	"github.com/NovaSiteWorks/api-referral/internal/commissionrule"
)

func f(v float64) *float64 { return &v }

func TestCalculatePercentageMethods(t *testing.T) {
	fin := Context{
		ProjectValue:          10000,
		PaymentsReceivedTotal: 800,
		FirstPaymentAmount:    500,
	}

	cases := []struct {
		name   string
		method commissionrule.Method
		want   float64
	}{
		{"project value", commissionrule.MethodProjectValue, 1000},
		{"payments received", commissionrule.MethodPaymentsReceived, 80},
		{"first payment", commissionrule.MethodFirstPayment, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := commissionrule.Rule{
				Type:    commissionrule.TypePercentage,
				Rate:    10,
				Method:  tc.method,
				Trigger: commissionrule.TriggerFirstPayment,
			}
			res, err := Calculate(rule, fin)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if res.FinalAmount != tc.want {
				t.Errorf("FinalAmount = %v, want %v", res.FinalAmount, tc.want)
			}
			if res.CapApplied || res.MinimumApplied {
				t.Errorf("no clamp should fire, got cap=%v min=%v", res.CapApplied, res.MinimumApplied)
			}
		})
	}
}

func TestCalculateFixedIgnoresContext(t *testing.T) {
	rule := commissionrule.Rule{
		Type:      commissionrule.TypeFixed,
		FixedRate: 250,
		Method:    commissionrule.MethodProjectValue,
		Trigger:   commissionrule.TriggerSignup,
	}

	for _, fin := range []Context{{}, {ProjectValue: 99999, PaymentsReceivedTotal: 5, FirstPaymentAmount: 1}} {
		res, err := Calculate(rule, fin)
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		if res.FinalAmount != 250 {
			t.Errorf("FinalAmount = %v, want 250 regardless of context", res.FinalAmount)
		}
	}
}

func TestCalculateCapAppliesToFixed(t *testing.T) {
	rule := commissionrule.Rule{
		Type:      commissionrule.TypeFixed,
		FixedRate: 100,
		Method:    commissionrule.MethodProjectValue,
		Trigger:   commissionrule.TriggerSignup,
		Cap:       f(80),
	}

	res, err := Calculate(rule, Context{})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.FinalAmount != 80 {
		t.Errorf("FinalAmount = %v, want 80 (cap)", res.FinalAmount)
	}
	if !res.CapApplied {
		t.Error("CapApplied should be true")
	}
	if res.BaseAmount != 100 {
		t.Errorf("BaseAmount = %v, want the pre-clamp 100", res.BaseAmount)
	}
}

func TestCalculateMinimumThenCap(t *testing.T) {
	cases := []struct {
		name        string
		base        float64 // project value; rate is 10%
		minimum     *float64
		cap         *float64
		want        float64
		wantMin     bool
		wantCapHits bool
	}{
		{"minimum lifts small amount", 100, f(30), f(200), 30, true, false},
		{"cap trims large amount", 5000, f(30), f(200), 200, false, true},
		{"inside the band", 1000, f(30), f(200), 100, false, false},
		{"cap not reached", 100, nil, f(25), 10, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := commissionrule.Rule{
				Type:    commissionrule.TypePercentage,
				Rate:    10,
				Method:  commissionrule.MethodProjectValue,
				Trigger: commissionrule.TriggerFirstPayment,
				Cap:     tc.cap,
				Minimum: tc.minimum,
			}
			res, err := Calculate(rule, Context{ProjectValue: tc.base})
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if res.FinalAmount != tc.want {
				t.Errorf("FinalAmount = %v, want %v", res.FinalAmount, tc.want)
			}
			if res.MinimumApplied != tc.wantMin {
				t.Errorf("MinimumApplied = %v, want %v", res.MinimumApplied, tc.wantMin)
			}
			if res.CapApplied != tc.wantCapHits {
				t.Errorf("CapApplied = %v, want %v", res.CapApplied, tc.wantCapHits)
			}
			if tc.minimum != nil && tc.cap != nil {
				if res.FinalAmount < *tc.minimum || res.FinalAmount > *tc.cap {
					t.Errorf("FinalAmount %v outside [%v, %v]", res.FinalAmount, *tc.minimum, *tc.cap)
				}
			}
		})
	}
}

func TestCalculateRejectsInvalidRules(t *testing.T) {
	cases := []struct {
		name string
		rule commissionrule.Rule
	}{
		{"negative rate", commissionrule.Rule{
			Type: commissionrule.TypePercentage, Rate: -5,
			Method: commissionrule.MethodProjectValue, Trigger: commissionrule.TriggerSignup,
		}},
		{"cap below minimum", commissionrule.Rule{
			Type: commissionrule.TypePercentage, Rate: 10,
			Method: commissionrule.MethodProjectValue, Trigger: commissionrule.TriggerSignup,
			Cap: f(10), Minimum: f(20),
		}},
		{"missing type", commissionrule.Rule{
			Method: commissionrule.MethodProjectValue, Trigger: commissionrule.TriggerSignup,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Calculate(tc.rule, Context{ProjectValue: 100}); !errors.Is(err, commissionrule.ErrInvalidRule) {
				t.Errorf("err = %v, want ErrInvalidRule", err)
			}
		})
	}
}

func TestRoundToCents(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.125, 0.13},
		{0.124, 0.12},
		{80.125, 80.13},
		{50, 50},
		{0, 0},
	}
	for _, tc := range cases {
		if got := RoundToCents(tc.in); got != tc.want {
			t.Errorf("RoundToCents(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCalculateRoundsHalfUp(t *testing.T) {
	rule := commissionrule.Rule{
		Type:    commissionrule.TypePercentage,
		Rate:    10,
		Method:  commissionrule.MethodProjectValue,
		Trigger: commissionrule.TriggerFirstPayment,
	}
	res, err := Calculate(rule, Context{ProjectValue: 1.25})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.FinalAmount != 0.13 {
		t.Errorf("FinalAmount = %v, want 0.13", res.FinalAmount)
	}
}
