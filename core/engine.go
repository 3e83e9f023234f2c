package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DropSentinel replaces every value of a dropped column. The column itself
// stays in the dataset so the output keeps the input's shape.
const DropSentinel = "[REMOVED]"

// defaultAgeBins are the half-open age bin edges used by bucket_age when
// no custom bins are supplied.
var defaultAgeBins = []int{0, 12, 18, 30, 45, 60, 75, 200}

var (
	// Captures the first character of the local part and the @domain tail
	// so everything between them can be hidden.
	emailInlineRe = regexp.MustCompile(`([A-Za-z0-9._%+-])[A-Za-z0-9._%+-]*(@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)

	// Phone-like digit runs embedded in text, tolerant of +, (), spaces
	// and dashes.
	phoneInlineRe = regexp.MustCompile(`\+?\d[\d\-\s().]{6,}\d`)

	digitRe = regexp.MustCompile(`\d`)
)

// Engine applies resolved strategy specs to column values. The only state
// it carries is the configured salt for hash and pseudonym determinism.
type Engine struct {
	salt string
}

// NewEngine creates an engine with the given salt.
func NewEngine(salt string) *Engine {
	return &Engine{salt: salt}
}

// Anonymize applies the plan to a dataset and returns a new dataset with
// the transformed columns replacing their originals in place. Row count
// and column order always match the input; plan entries naming columns
// absent from the dataset are ignored.
func (e *Engine) Anonymize(ds *Dataset, plan Plan) *Dataset {
	out := ds.Clone()
	for column, spec := range plan {
		col, ok := out.Column(column)
		if !ok {
			continue
		}
		col.Values = e.Apply(col.Values, spec)
	}
	return out
}

// Apply transforms a column of values with the given spec. Values are
// trimmed first (the loader's stand-in for null is the empty string). A
// malformed individual cell never fails the column: transforms that cannot
// interpret a value return it unchanged.
func (e *Engine) Apply(values []string, spec StrategySpec) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = e.applyValue(strings.TrimSpace(v), spec)
	}
	return out
}

func (e *Engine) applyValue(v string, spec StrategySpec) string {
	switch spec.Kind {
	case StrategyDrop:
		return DropSentinel

	case StrategyMask:
		keepStart := intParam(spec.Params, "keep_start", 1)
		keepEnd := intParam(spec.Params, "keep_end", 1)
		char := stringParam(spec.Params, "char", "*")
		switch {
		case strings.Contains(v, "@"):
			return maskEmail(v)
		case digitCount(v) >= 6:
			return maskPhoneDigits(v, 2)
		default:
			return maskText(v, keepStart, keepEnd, char)
		}

	case StrategyHash:
		salt := stringParam(spec.Params, "salt", e.salt)
		length := intParam(spec.Params, "length", 16)
		return hashValue(v, salt, length)

	case StrategyPseudonym:
		salt := stringParam(spec.Params, "salt", e.salt)
		prefix := stringParam(spec.Params, "prefix", "ID_")
		return pseudonymValue(v, salt, prefix)

	case StrategyGeneralizeDate:
		return generalizeDate(v, stringParam(spec.Params, "granularity", "year_month"))

	case StrategyGeneralizeGeo:
		return generalizeGeo(v, intParam(spec.Params, "levels", 2))

	case StrategyBucketNumeric:
		return bucketNumeric(v, floatParam(spec.Params, "size", 10.0))

	case StrategyBucketAge:
		return bucketAge(v, ageBins(spec.Params))

	case StrategyRedactText:
		return redactFreeText(v)
	}

	// The parser only emits the fixed strategy kinds, so this path is
	// unreachable through the public API; generic masking is the safe
	// degradation if it ever runs.
	return maskText(v, 1, 1, "*")
}

// maskText hides the middle of a string, keeping keepStart leading and
// keepEnd trailing characters. Strings too short to keep both ends are
// masked entirely.
func maskText(s string, keepStart, keepEnd int, maskChar string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	if len(runes) <= keepStart+keepEnd {
		return strings.Repeat(maskChar, len(runes))
	}
	return string(runes[:keepStart]) +
		strings.Repeat(maskChar, len(runes)-keepStart-keepEnd) +
		string(runes[len(runes)-keepEnd:])
}

// maskEmail hides the local part of an email except its first character,
// preserving the domain. Values without "@" fall back to generic masking.
func maskEmail(s string) string {
	if s == "" || !strings.Contains(s, "@") {
		return maskText(s, 1, 1, "*")
	}
	return emailInlineRe.ReplaceAllString(s, "$1***$2")
}

// maskPhoneDigits masks every digit while preserving separators, and
// appends the last tailKeep digits in parentheses when tailKeep > 0.
// Values without digits are returned unchanged.
func maskPhoneDigits(s string, tailKeep int) string {
	if s == "" {
		return s
	}
	var digits []rune
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return s
	}
	masked := digitRe.ReplaceAllString(s, "*")
	if tailKeep <= 0 {
		return masked
	}
	if tailKeep > len(digits) {
		tailKeep = len(digits)
	}
	return masked + " (" + string(digits[len(digits)-tailKeep:]) + ")"
}

// hashValue returns the lowercase hex SHA-256 digest of salt+value,
// truncated to length characters. Deterministic for a fixed salt, so equal
// inputs stay linkable inside the anonymized set.
func hashValue(s, salt string, length int) string {
	sum := sha256.Sum256([]byte(salt + s))
	digest := hex.EncodeToString(sum[:])
	if length > 0 && length < len(digest) {
		return digest[:length]
	}
	return digest
}

// pseudonymValue returns a deterministic, non-reversible token: the first
// 10 hex characters of an HMAC-SHA256 over the value keyed by the salt,
// behind the given prefix.
func pseudonymValue(s, salt, prefix string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(s))
	return prefix + hex.EncodeToString(mac.Sum(nil))[:10]
}

// Date layouts tried in order; day-first layouts come before anything
// ambiguous, matching how source datasets in this domain write dates.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"2006/1/2",
	"2/1/06",
	"2-1-06",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// generalizeDate reduces a date to "YYYY" or "YYYY-MM" depending on
// granularity. Unparsable values are returned unchanged.
func generalizeDate(s, granularity string) string {
	if s == "" {
		return s
	}
	var parsed time.Time
	ok := false
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			parsed = t
			ok = true
			break
		}
	}
	if !ok {
		return s
	}
	if granularity == "year" {
		return strconv.Itoa(parsed.Year())
	}
	return fmt.Sprintf("%d-%02d", parsed.Year(), int(parsed.Month()))
}

// generalizeGeo removes numeric precision from a location: digits are
// stripped, the remainder is split on commas and only the last levels
// segments survive (the single last one when levels <= 0). If nothing
// remains after stripping, the original value is returned unchanged.
func generalizeGeo(s string, levels int) string {
	if s == "" {
		return s
	}
	stripped := strings.TrimSpace(digitRe.ReplaceAllString(s, ""))
	var parts []string
	for _, p := range strings.Split(stripped, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return s
	}
	if levels <= 0 {
		return parts[len(parts)-1]
	}
	if levels > len(parts) {
		levels = len(parts)
	}
	return strings.Join(parts[len(parts)-levels:], ", ")
}

// bucketNumeric maps a number onto its size-wide bucket and renders the
// "lo-hi" label. Bounds render as integers when size is a whole number and
// as 2-decimal floats otherwise. Non-numeric values and non-positive sizes
// pass through unchanged.
func bucketNumeric(s string, size float64) string {
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || size <= 0 {
		return s
	}
	lo := math.Floor(x/size) * size
	hi := lo + size - 1
	if size == math.Trunc(size) {
		return fmt.Sprintf("%d-%d", int(lo), int(hi))
	}
	return fmt.Sprintf("%.2f-%.2f", lo, hi)
}

// bucketAge finds the half-open bin [bins[i], bins[i+1]) containing the
// value and renders "bins[i]-(bins[i+1]-1)". Values outside every bin
// (including non-numeric ones) are returned unchanged.
func bucketAge(s string, bins []int) string {
	age, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	for i := 0; i < len(bins)-1; i++ {
		if float64(bins[i]) <= age && age < float64(bins[i+1]) {
			return fmt.Sprintf("%d-%d", bins[i], bins[i+1]-1)
		}
	}
	return s
}

// ageBins resolves the bins parameter: a pipe-separated list of integer
// edges ("0|18|30|200"), falling back to the default bins when absent or
// unparsable.
func ageBins(params map[string]any) []int {
	raw, ok := params["bins"]
	if !ok {
		return defaultAgeBins
	}
	parts := strings.Split(fmt.Sprint(raw), "|")
	if len(parts) < 2 {
		return defaultAgeBins
	}
	bins := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return defaultAgeBins
		}
		bins[i] = n
	}
	return bins
}

// redactFreeText censors PII embedded in free text: email local parts are
// masked after their first character, phone-like digit runs have every
// digit masked with no tail, and 8- and 11-digit ID-like runs are masked
// entirely. Everything else is preserved verbatim.
func redactFreeText(s string) string {
	if s == "" {
		return s
	}
	out := emailInlineRe.ReplaceAllString(s, "$1***$2")
	out = phoneInlineRe.ReplaceAllStringFunc(out, func(m string) string {
		return maskPhoneDigits(m, 0)
	})
	out = nationalID8Re.ReplaceAllStringFunc(out, func(m string) string {
		return strings.Repeat("*", len(m))
	})
	out = nationalID11Re.ReplaceAllStringFunc(out, func(m string) string {
		return strings.Repeat("*", len(m))
	})
	return out
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// intParam reads an int parameter, accepting float values with no
// fractional part, and returns def when the key is absent or unusable.
func intParam(params map[string]any, key string, def int) int {
	raw, ok := params[key]
	if !ok {
		return def
	}
	switch n := raw.(type) {
	case int:
		return n
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	}
	return def
}

// floatParam reads a numeric parameter widened to float64.
func floatParam(params map[string]any, key string, def float64) float64 {
	raw, ok := params[key]
	if !ok {
		return def
	}
	if f, ok := numericParam(raw); ok {
		return f
	}
	return def
}

// stringParam reads a parameter rendered as a string whatever its coerced
// type.
func stringParam(params map[string]any, key, def string) string {
	raw, ok := params[key]
	if !ok {
		return def
	}
	return fmt.Sprint(raw)
}
