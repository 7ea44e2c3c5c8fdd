package enums

// VerificationOutcome is the decision recorded for an age verification attempt.
type VerificationOutcome string

const (
	VerificationOutcomeVerified   VerificationOutcome = "VERIFIED"
	VerificationOutcomeDenied     VerificationOutcome = "DENIED"
	VerificationOutcomeOverridden VerificationOutcome = "OVERRIDDEN"
)

var validVerificationOutcomes = []VerificationOutcome{
	VerificationOutcomeVerified,
	VerificationOutcomeDenied,
	VerificationOutcomeOverridden,
}

func (o VerificationOutcome) String() string { return string(o) }

func (o VerificationOutcome) IsValid() bool { return isMember(validVerificationOutcomes, o) }

// Permits reports whether the outcome allows a restricted sale to proceed.
func (o VerificationOutcome) Permits() bool {
	return o == VerificationOutcomeVerified || o == VerificationOutcomeOverridden
}

func ParseVerificationOutcome(value string) (VerificationOutcome, error) {
	return parseMember(validVerificationOutcomes, value, "verification outcome")
}
