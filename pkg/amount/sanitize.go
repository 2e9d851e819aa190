package amount

import "strings"

// MaxInputFractionDigits caps the fractional digits a user may type. It is a
// keystroke-level limit and does not depend on the selected token.
const MaxInputFractionDigits = 8

// SanitizeInput filters raw keystroke input down to a partial decimal number.
//
// Only digits and '.' survive. When several dots are present the first one is
// kept and the digits after later dots are merged into the fractional part,
// so "12.34.56" becomes "12.3456". A leading dot gets a "0" integer part and a
// trailing dot is preserved so the user can keep typing. The result is always
// accepted by ParseUnits and SanitizeInput(SanitizeInput(s)) == SanitizeInput(s).
func SanitizeInput(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; (c >= '0' && c <= '9') || c == '.' {
			sb.WriteByte(c)
		}
	}
	cleaned := sb.String()

	intPart, fracPart, hasDot := strings.Cut(cleaned, ".")
	if !hasDot {
		return intPart
	}
	fracPart = strings.ReplaceAll(fracPart, ".", "")
	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		return intPart + "."
	}
	if len(fracPart) > MaxInputFractionDigits {
		fracPart = fracPart[:MaxInputFractionDigits]
	}
	return intPart + "." + fracPart
}
