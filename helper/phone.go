package helper

import "strings"

const (
	countryCode     = "233"
	subscriberLen   = 9
	fullNumberLen   = len(countryCode) + subscriberLen
	localNumberLen  = subscriberLen + 1 // leading 0
	intlDialPrefix  = "00"
	phoneSuffixSize = 9
)

// NormalizePhone canonicalizes Ghana phone numbers to 233XXXXXXXXX with no
// symbols. Best effort: unrecognized shapes come back as their bare digits.
// Pure and deterministic, it backs both lookup matching and duplicate-phone
// checks, so normalizing an already-canonical value must be a no-op.
func NormalizePhone(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if strings.HasPrefix(s, intlDialPrefix) {
		s = s[len(intlDialPrefix):]
	}
	switch {
	case strings.HasPrefix(s, countryCode) && len(s) == fullNumberLen:
		return s
	case strings.HasPrefix(s, "0") && len(s) == localNumberLen:
		return countryCode + s[1:]
	case len(s) == subscriberLen:
		return countryCode + s
	}
	return s
}

// PhoneSuffix returns the last 9 digits used for forgiving lookup matching.
func PhoneSuffix(normalized string) string {
	if len(normalized) <= phoneSuffixSize {
		return normalized
	}
	return normalized[len(normalized)-phoneSuffixSize:]
}
