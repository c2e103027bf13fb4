// Package phone normalizes phone numbers for client matching.
package phone

import (
	"fmt"
	"strings"
)

// Normalize reduces a phone string to its canonical digit form used for
// equality comparisons. Ten digits get a leading "1"; eleven digits starting
// with "1" pass through; anything else is returned as the raw digit string.
// Never use the result for display.
func Normalize(input string) string {
	digits := stripNonDigits(input)
	switch {
	case len(digits) == 10:
		return "1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return digits
	default:
		return digits
	}
}

// FormatForDisplay renders a NANP number as +1 (AAA) EEE-NNNN. Inputs that do
// not normalize to an eleven-digit "1..." form are returned unchanged.
func FormatForDisplay(input string) string {
	digits := Normalize(input)
	if len(digits) != 11 || !strings.HasPrefix(digits, "1") {
		return input
	}
	return fmt.Sprintf("+1 (%s) %s-%s", digits[1:4], digits[4:7], digits[7:11])
}

func stripNonDigits(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
