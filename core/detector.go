package core

import (
	"regexp"
	"sort"
	"strings"
)

// detectSampleRows caps how many rows the boolean detector inspects per
// column.
const detectSampleRows = 300

var (
	// Street/neighborhood tokens that hint at postal addresses.
	addressHintRe = regexp.MustCompile(`(?i)\b(av\.|jr\.|calle|urbanizacion|urbanización|mz|lt|avda|avenida|pasaje|pje|barrio|sector|urb\.?)`)

	// Capitalized multi-word token sequences that look like person names.
	properNameRe = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(\s[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)+$`)
)

// DetectPIIColumns flags columns likely to contain personal data. A column
// is flagged when any of the following holds:
//
//  1. its lowercased name contains a known PII keyword as a substring;
//  2. any value in the first 300 rows matches a registered content
//     pattern or an address hint;
//  3. more than half of the sampled values look like proper names.
//
// This coarse boolean detector is deliberately separate from the scored
// Classify path: it additionally considers address hints and the
// proper-name shape, and it flags on any signal instead of weighing them.
// The returned names are sorted.
func (c *Classifier) DetectPIIColumns(ds *Dataset) []string {
	detected := make(map[string]bool)

	for _, col := range ds.Columns {
		low := strings.ToLower(col.Name)
		for _, keyword := range c.rules.piiKeywords {
			if strings.Contains(low, keyword) {
				detected[col.Name] = true
				break
			}
		}
	}

	for _, col := range ds.Columns {
		if detected[col.Name] {
			continue
		}

		sample := col.Values
		if len(sample) > detectSampleRows {
			sample = sample[:detectSampleRows]
		}
		text := strings.Join(sample, " ")

		if c.registry.AnyMatch(text) || addressHintRe.MatchString(text) {
			detected[col.Name] = true
			continue
		}

		nameLike := 0
		for _, v := range sample {
			if properNameRe.MatchString(v) {
				nameLike++
			}
		}
		if len(sample) > 0 && nameLike*2 > len(sample) {
			detected[col.Name] = true
		}
	}

	names := make([]string, 0, len(detected))
	for name := range detected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CountHits counts occurrences of sensitive patterns in a column: the sum
// of match counts across every registered content pattern, plus the
// national-ID, date and address-hint patterns counted again on top. The
// extra passes intentionally overweight document numbers, dates and
// addresses in the risk score.
func (c *Classifier) CountHits(ds *Dataset, column string) int {
	col, ok := ds.Column(column)
	if !ok {
		return 0
	}
	text := strings.Join(col.Values, " ")

	hits := c.registry.MatchCount(text)
	hits += len(nationalID8Re.FindAllString(text, -1))
	hits += len(nationalID11Re.FindAllString(text, -1))
	hits += len(dateRe.FindAllString(text, -1))
	hits += len(addressHintRe.FindAllString(text, -1))
	return hits
}
