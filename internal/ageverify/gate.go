// Package ageverify decides whether a customer may buy age-restricted products and records
// every verification attempt.
package ageverify

import (
	"time"

	"github.com/Uptivity/justsell-pos-sub002/internal/inventory"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
)

const (
	// MinimumAge is the legal purchase age for restricted products.
	MinimumAge = 21
	// AbsoluteMinimumAge is the floor below which no override is possible.
	AbsoluteMinimumAge = 18
)

const (
	ReasonExpiredID   = "Expired identification document"
	ReasonUnder18     = "Customer is under 18"
	ReasonUnderMinAge = "Customer is under 21"
)

// RequiresVerification reports whether any resolved line is age restricted.
func RequiresVerification(lines []inventory.ResolvedLine) bool {
	for _, line := range lines {
		if line.Product.AgeRestricted {
			return true
		}
	}
	return false
}

// CalculateAge returns the number of whole years between dob and on, counting a birthday only
// once its calendar day has been reached.
func CalculateAge(dob, on time.Time) int {
	dob = dateOnly(dob)
	on = dateOnly(on)
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

// Input is the identity document data read at the counter.
type Input struct {
	DateOfBirth      time.Time
	IDExpirationDate time.Time
	On               time.Time
}

// Decision is the outcome of evaluating one document.
type Decision struct {
	Outcome          enums.VerificationOutcome
	Age              int
	DenialReason     string
	OverrideEligible bool
}

// Evaluate applies the verification rules in order: expired document, under the absolute
// minimum, under the legal age (manager override eligible), otherwise verified.
func Evaluate(in Input) (Decision, error) {
	if in.DateOfBirth.IsZero() {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "date_of_birth is required")
	}
	if in.IDExpirationDate.IsZero() {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "id_expiration_date is required")
	}
	on := in.On
	if on.IsZero() {
		on = time.Now().UTC()
	}
	if dateOnly(in.DateOfBirth).After(dateOnly(on)) {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "date_of_birth cannot be in the future")
	}

	age := CalculateAge(in.DateOfBirth, on)
	switch {
	case dateOnly(in.IDExpirationDate).Before(dateOnly(on)):
		return deny(age, ReasonExpiredID, false), nil
	case age < AbsoluteMinimumAge:
		return deny(age, ReasonUnder18, false), nil
	case age < MinimumAge:
		return deny(age, ReasonUnderMinAge, true), nil
	default:
		return Decision{Outcome: enums.VerificationOutcomeVerified, Age: age}, nil
	}
}

func deny(age int, reason string, eligible bool) Decision {
	return Decision{
		Outcome:          enums.VerificationOutcomeDenied,
		Age:              age,
		DenialReason:     reason,
		OverrideEligible: eligible,
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
