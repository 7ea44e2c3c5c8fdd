package ageverify

import (
	"testing"
	"time"

	"github.com/Uptivity/justsell-pos-sub002/internal/inventory"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateAge(t *testing.T) {
	cases := []struct {
		name string
		dob  time.Time
		on   time.Time
		want int
	}{
		{"day before birthday", date(2004, time.June, 15), date(2025, time.June, 14), 20},
		{"on birthday", date(2004, time.June, 15), date(2025, time.June, 15), 21},
		{"earlier month", date(2004, time.June, 15), date(2025, time.May, 30), 20},
		{"leap day before march", date(2004, time.February, 29), date(2025, time.February, 28), 20},
		{"leap day in march", date(2004, time.February, 29), date(2025, time.March, 1), 21},
		{"ignores clock time", date(2004, time.June, 15), time.Date(2025, time.June, 15, 0, 0, 1, 0, time.UTC), 21},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateAge(tc.dob, tc.on); got != tc.want {
				t.Fatalf("expected %d got %d", tc.want, got)
			}
		})
	}
}

func TestEvaluateDecisionTable(t *testing.T) {
	on := date(2025, time.June, 15)
	valid := date(2028, time.January, 1)
	cases := []struct {
		name     string
		dob      time.Time
		expires  time.Time
		outcome  enums.VerificationOutcome
		reason   string
		eligible bool
	}{
		{"adult", date(1990, time.January, 1), valid, enums.VerificationOutcomeVerified, "", false},
		{"turns 21 today", date(2004, time.June, 15), valid, enums.VerificationOutcomeVerified, "", false},
		{"twenty", date(2004, time.June, 16), valid, enums.VerificationOutcomeDenied, ReasonUnderMinAge, true},
		{"eighteen", date(2007, time.June, 15), valid, enums.VerificationOutcomeDenied, ReasonUnderMinAge, true},
		{"seventeen", date(2007, time.June, 16), valid, enums.VerificationOutcomeDenied, ReasonUnder18, false},
		{"expired adult", date(1990, time.January, 1), date(2025, time.June, 14), enums.VerificationOutcomeDenied, ReasonExpiredID, false},
		{"expires today", date(1990, time.January, 1), on, enums.VerificationOutcomeVerified, "", false},
		{"expired minor", date(2010, time.January, 1), date(2020, time.January, 1), enums.VerificationOutcomeDenied, ReasonExpiredID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Evaluate(Input{DateOfBirth: tc.dob, IDExpirationDate: tc.expires, On: on})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Outcome != tc.outcome || d.DenialReason != tc.reason || d.OverrideEligible != tc.eligible {
				t.Fatalf("unexpected decision %+v", d)
			}
		})
	}
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	on := date(2025, time.June, 15)
	inputs := []Input{
		{IDExpirationDate: on, On: on},
		{DateOfBirth: date(1990, 1, 1), On: on},
		{DateOfBirth: date(2025, time.June, 16), IDExpirationDate: on, On: on},
	}
	for _, in := range inputs {
		if _, err := Evaluate(in); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestRequiresVerification(t *testing.T) {
	plain := inventory.ResolvedLine{Product: models.Product{Name: "Lighter"}, Quantity: 1}
	restricted := inventory.ResolvedLine{Product: models.Product{Name: "Vape", AgeRestricted: true}, Quantity: 1}

	if RequiresVerification([]inventory.ResolvedLine{plain}) {
		t.Fatal("unrestricted cart should not require verification")
	}
	if !RequiresVerification([]inventory.ResolvedLine{plain, restricted}) {
		t.Fatal("restricted cart should require verification")
	}
}
