package customer

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestAccrualSkippedOnMissingInfluencer(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"influencer soft-deleted after referral", gorm.ErrRecordNotFound, true},
		{"wrapped not-found from a repository", fmt.Errorf("loading influencer: %w", gorm.ErrRecordNotFound), true},
		{"store failure aborts the transaction", errors.New("connection reset"), false},
		{"no error", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := accrualSkipped(tc.err); got != tc.want {
				t.Errorf("accrualSkipped(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
