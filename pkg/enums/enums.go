// Package enums holds the closed string sets stored in the database and accepted over HTTP.
package enums

import (
	"fmt"
	"slices"
)

func isMember[T ~string](set []T, v T) bool {
	return slices.Contains(set, v)
}

// parseMember is exact-match: callers normalise case before parsing.
func parseMember[T ~string](set []T, raw, kind string) (T, error) {
	if v := T(raw); isMember(set, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
