package core

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorRun    = regexp.MustCompile(`[ \t\-/.]+`)
	invalidColChars = regexp.MustCompile(`[^a-z0-9_áéíóúüñ]+`)
	underscoreRun   = regexp.MustCompile(`_{2,}`)

	// NFD decomposition followed by removal of combining marks, so that
	// "ubicación" normalizes to "ubicacion".
	accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// StripAccents removes diacritics while keeping the base letters readable.
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeColumn normalizes a raw column name: trim, lowercase, strip
// accents, replace separator runs with "_", replace anything left outside
// [a-z0-9_] with "_", collapse repeated underscores and trim them from
// both ends. The result is idempotent: normalizing an already-normalized
// name yields the same string. A nil-ish (empty) input yields "".
func NormalizeColumn(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = StripAccents(s)
	s = separatorRun.ReplaceAllString(s, "_")
	s = invalidColChars.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Canonical normalizes a column name and maps it through the synonym
// table, returning the canonical token or the normalized name unchanged
// when no mapping exists.
func (r *Rules) Canonical(name string) string {
	n := NormalizeColumn(name)
	if canon, ok := r.synonyms[n]; ok {
		return canon
	}
	return n
}
