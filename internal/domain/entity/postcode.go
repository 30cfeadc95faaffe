package entity

import (
	"regexp"
	"strings"
)

// postcodePattern is the accepted shape of a UK postcode after uppercasing.
var postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`)

// inwardLength is the fixed length of the inward code ("1AA" in "SW1A 1AA").
const inwardLength = 3

// NormalizePostcode uppercases and trims raw and validates it.
// The canonical form separates outward and inward codes with one space,
// so "sw1a1aa" and "SW1A 1AA" share a cache key.
func NormalizePostcode(raw string) (string, bool) {
	postcode := strings.ToUpper(strings.TrimSpace(raw))
	if !postcodePattern.MatchString(postcode) {
		return "", false
	}

	compact := strings.ReplaceAll(postcode, " ", "")
	split := len(compact) - inwardLength

	return compact[:split] + " " + compact[split:], true
}

// CompactPostcode strips every space from a postcode.
func CompactPostcode(postcode string) string {
	return strings.ReplaceAll(postcode, " ", "")
}
