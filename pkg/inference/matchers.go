package inference

import (
	"regexp"
	"strings"
)

// A Matcher classifies a single fragment's text against one field. Matchers
// are pure and order-independent; new card layouts add matchers without
// touching existing ones.
type Matcher struct {
	Name  string
	Match func(text string) (string, bool)
}

var (
	// Toy numbers look like "GRX12", "HCT93-M521" or long digit runs.
	// A bare 4-digit year must not be swallowed here, so a mixed token needs
	// both a letter and a digit, and a digit-only token needs 5-6 digits.
	toyTokenRE   = regexp.MustCompile(`\b[A-Z0-9]{3,}\b`)
	digitOnlyRE  = regexp.MustCompile(`^[0-9]{5,6}$`)
	yearRE       = regexp.MustCompile(`\b20\d{2}\b`)
	seriesRE     = regexp.MustCompile(`(?i)\b((?:19|20)\d{2}|[A-Za-z][A-Za-z' ]{0,30}?)\s+series\b`)
	assortmentRE = regexp.MustCompile(`(?i)asst\.?\s*[A-Z0-9]{4,7}`)
)

// collections is the closed rarity-tier vocabulary. Order matters: the
// longer phrase must be probed before its suffix.
var collections = []string{
	"Super Treasure Hunt",
	"Treasure Hunt",
	"Mainline",
	"Premium",
}

// MatchToyNumber extracts a toy-number token from card text.
func MatchToyNumber(text string) (string, bool) {
	// Assortment codes sit next to toy numbers on the card back and look
	// just like them; strip them first.
	cleaned := assortmentRE.ReplaceAllString(text, "")
	for _, tok := range toyTokenRE.FindAllString(strings.ToUpper(cleaned), -1) {
		hasLetter := strings.ContainsAny(tok, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
		hasDigit := strings.ContainsAny(tok, "0123456789")
		if hasLetter && hasDigit {
			// Only accept tokens that were uppercase on the card itself.
			if strings.Contains(cleaned, tok) {
				return tok, true
			}
			continue
		}
		if digitOnlyRE.MatchString(tok) {
			return tok, true
		}
	}
	return "", false
}

// MatchSeries extracts a series name: a year or short phrase followed by the
// word "Series", e.g. "HW Exotics Series" or "2023 Series".
func MatchSeries(text string) (string, bool) {
	if m := seriesRE.FindString(text); m != "" {
		return strings.TrimSpace(m), true
	}
	return "", false
}

// MatchYear extracts a 4-digit 20xx token.
func MatchYear(text string) (string, bool) {
	if m := yearRE.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

// MatchCollection extracts a rarity tier from the closed vocabulary,
// returning its canonical spelling.
func MatchCollection(text string) (string, bool) {
	low := strings.ToLower(text)
	for _, c := range collections {
		if strings.Contains(low, strings.ToLower(c)) {
			return c, true
		}
	}
	return "", false
}

// fieldMatchers is the field-population order for the sweep: first match in
// iteration order wins per field.
var fieldMatchers = []Matcher{
	{Name: "toyNumber", Match: MatchToyNumber},
	{Name: "series", Match: MatchSeries},
	{Name: "year", Match: MatchYear},
	{Name: "collection", Match: MatchCollection},
}

// matchesAnyField reports whether the text matches any field pattern. Used
// by the car-model fallback, which wants unclassified prose only.
func matchesAnyField(text string) bool {
	for _, m := range fieldMatchers {
		if _, ok := m.Match(text); ok {
			return true
		}
	}
	return false
}
