package commissionrule

import (
	"errors"
	"testing"
)

func f(v float64) *float64 { return &v }

func validPercentage() Rule {
	return Rule{
		Type:    TypePercentage,
		Rate:    10,
		Method:  MethodProjectValue,
		Trigger: TriggerFirstPayment,
	}
}

func TestRuleValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Rule)
		wantErr bool
	}{
		{"valid percentage", func(r *Rule) {}, false},
		{"valid fixed", func(r *Rule) { r.Type = TypeFixed; r.Rate = 0; r.FixedRate = 100 }, false},
		{"valid with clamps", func(r *Rule) { r.Minimum = f(10); r.Cap = f(50) }, false},
		{"equal cap and minimum", func(r *Rule) { r.Minimum = f(25); r.Cap = f(25) }, false},
		{"negative rate", func(r *Rule) { r.Rate = -1 }, true},
		{"rate above 100", func(r *Rule) { r.Rate = 101 }, true},
		{"negative fixed rate", func(r *Rule) { r.Type = TypeFixed; r.FixedRate = -5 }, true},
		{"unknown type", func(r *Rule) { r.Type = "flat" }, true},
		{"unknown method", func(r *Rule) { r.Method = "revenue" }, true},
		{"unknown trigger", func(r *Rule) { r.Trigger = "churn" }, true},
		{"negative cap", func(r *Rule) { r.Cap = f(-1) }, true},
		{"cap below minimum", func(r *Rule) { r.Minimum = f(20); r.Cap = f(10) }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validPercentage()
			tc.mutate(&r)
			err := r.Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidRule) {
				t.Errorf("err = %v, want ErrInvalidRule", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRuleNormalized(t *testing.T) {
	fixed := Rule{Type: TypeFixed, Rate: 15, FixedRate: 100, Method: MethodProjectValue, Trigger: TriggerSignup}
	if got := fixed.Normalized(); got.Rate != 0 || got.FixedRate != 100 {
		t.Errorf("fixed rule kept stale rate: %+v", got)
	}

	pct := Rule{Type: TypePercentage, Rate: 15, FixedRate: 100, Method: MethodProjectValue, Trigger: TriggerSignup}
	if got := pct.Normalized(); got.FixedRate != 0 || got.Rate != 15 {
		t.Errorf("percentage rule kept stale fixed rate: %+v", got)
	}
}
