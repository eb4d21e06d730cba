package person

import "strings"

// NormalizePhone canonicalizes a user-supplied phone number into
// international "+<digits>" form.
//
// Formatting characters are stripped, a leading "00" becomes "+", and a
// national trunk "0" is replaced with the provided country calling code.
// Bare digit strings are assumed to already carry a country code.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder

	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return ""
	}

	countryCode = strings.TrimPrefix(strings.TrimSpace(countryCode), "+")

	switch {
	case strings.HasPrefix(digits, "00"):
		return "+" + digits[2:]
	case strings.HasPrefix(digits, "0"):
		return "+" + countryCode + digits[1:]
	default:
		return "+" + digits
	}
}
