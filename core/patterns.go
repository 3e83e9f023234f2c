package core

import "regexp"

// Compiled content detectors. The registry below references these in its
// fixed priority order; the scorer and the boolean detector reuse some of
// them directly.
var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	// International phone numbers with common separators.
	phoneRe = regexp.MustCompile(`\b(?:\+?\d{1,3}[\s\-.]?)?(?:\(?\d{2,4}\)?[\s\-.]?)?\d{3,4}[\s\-.]?\d{3,4}\b`)
	// Fixed-length national identifiers: 8-digit personal, 11-digit fiscal.
	nationalID8Re  = regexp.MustCompile(`\b\d{8}\b`)
	nationalID11Re = regexp.MustCompile(`\b\d{11}\b`)
	// Common date shapes: dd/mm/yyyy, yyyy-mm-dd and delimiter variants.
	dateRe = regexp.MustCompile(`\b(?:\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}|\d{4}[/\-]\d{1,2}[/\-]\d{1,2})\b`)
	// Decimal geographic coordinates (lat/long).
	geoCoordRe = regexp.MustCompile(`\b[-+]?\d{1,3}\.\d{3,}\b`)
	ipv4Re     = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\b`)
	ipv6Re     = regexp.MustCompile(`\b(?:[A-Fa-f0-9]{1,4}:){7}[A-Fa-f0-9]{1,4}\b`)
	// Card-number-like digit runs; candidates must still pass Luhn.
	cardLikeRe = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	ibanRe     = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`)

	nonDigitRe = regexp.MustCompile(`\D`)
)

// DetectionHint is a content-based classification signal: the category the
// matched pattern implies and the risk bonus it contributes.
type DetectionHint struct {
	Pattern  string
	Category Category
	Bonus    int
}

// contentPattern couples a compiled detector with the classification it
// implies and whether a match additionally needs a Luhn checksum.
type contentPattern struct {
	name     string
	re       *regexp.Regexp
	category Category
	bonus    int
	luhn     bool
}

// PatternRegistry is a priority-ordered table of content detectors.
// FirstMatch checks them in order and short-circuits on the first
// satisfied rule; it is a precedence chain, not a vote.
type PatternRegistry struct {
	patterns []contentPattern
}

// NewPatternRegistry builds the registry in its fixed priority order:
// email and phone (contact), national IDs (document), date, coordinates
// and IPs (quasi-identifiers), Luhn-validated card numbers and IBANs
// (document).
func NewPatternRegistry() *PatternRegistry {
	return &PatternRegistry{patterns: []contentPattern{
		{name: "email", re: emailRe, category: CategoryPIIContact, bonus: 20},
		{name: "phone", re: phoneRe, category: CategoryPIIContact, bonus: 20},
		{name: "national_id_8", re: nationalID8Re, category: CategoryDocumentID, bonus: 30},
		{name: "national_id_11", re: nationalID11Re, category: CategoryDocumentID, bonus: 30},
		{name: "date", re: dateRe, category: CategoryQuasiIdentifier, bonus: 10},
		{name: "geo_coord", re: geoCoordRe, category: CategoryQuasiIdentifier, bonus: 15},
		{name: "ipv4", re: ipv4Re, category: CategoryQuasiIdentifier, bonus: 15},
		{name: "ipv6", re: ipv6Re, category: CategoryQuasiIdentifier, bonus: 15},
		{name: "card_number", re: cardLikeRe, category: CategoryDocumentID, bonus: 40, luhn: true},
		{name: "iban", re: ibanRe, category: CategoryDocumentID, bonus: 30},
	}}
}

// FirstMatch inspects a text sample and returns the hint of the first
// pattern it satisfies, or false when nothing matches. Card-number-like
// digit runs count only when they pass the Luhn checksum.
func (p *PatternRegistry) FirstMatch(sample string) (DetectionHint, bool) {
	if sample == "" {
		return DetectionHint{}, false
	}
	for _, pat := range p.patterns {
		if pat.luhn {
			m := pat.re.FindString(sample)
			if m == "" || !LuhnValid(m) {
				continue
			}
		} else if !pat.re.MatchString(sample) {
			continue
		}
		return DetectionHint{Pattern: pat.name, Category: pat.category, Bonus: pat.bonus}, true
	}
	return DetectionHint{}, false
}

// AnyMatch reports whether any registered pattern matches the text. Unlike
// FirstMatch it does not apply the Luhn gate; it backs the coarse boolean
// detector, which errs on the side of flagging.
func (p *PatternRegistry) AnyMatch(text string) bool {
	for _, pat := range p.patterns {
		if pat.re.MatchString(text) {
			return true
		}
	}
	return false
}

// MatchCount sums the match counts of every registered pattern over the
// text.
func (p *PatternRegistry) MatchCount(text string) int {
	total := 0
	for _, pat := range p.patterns {
		total += len(pat.re.FindAllString(text, -1))
	}
	return total
}

// LuhnValid reports whether the digits in s satisfy the Luhn checksum:
// every second digit from the right (excluding the check digit) is
// doubled, digits above 9 have 9 subtracted, and the grand total including
// the check digit must be a multiple of 10. Runs shorter than 13 digits
// are rejected outright.
func LuhnValid(s string) bool {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if len(digits) < 13 {
		return false
	}
	checksum := 0
	parity := (len(digits) - 2) % 2
	for i := 0; i < len(digits)-1; i++ {
		d := int(digits[i] - '0')
		if i%2 == parity {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		checksum += d
	}
	checksum += int(digits[len(digits)-1] - '0')
	return checksum%10 == 0
}
