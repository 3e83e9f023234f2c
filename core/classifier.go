package core

import "strings"

// Category classifies how identifying a column is. Categories are ordered
// by their fixed base risk weight; the ordering defines precedence when a
// name-based classification and a content-based hint disagree.
type Category string

const (
	// CategoryPIIStrict covers direct identity fields (personal names).
	CategoryPIIStrict Category = "pii_strict"

	// CategoryPIIContact covers direct contact fields (email, phone).
	CategoryPIIContact Category = "pii_contact"

	// CategoryDocumentID covers identifying document numbers.
	CategoryDocumentID Category = "document_id"

	// CategorySensitive covers attributes that are sensitive without
	// identifying on their own (gender, religion, ethnicity).
	CategorySensitive Category = "sensitive_attribute"

	// CategoryQuasiIdentifier covers attributes that re-identify when
	// combined (date of birth, location, salary).
	CategoryQuasiIdentifier Category = "quasi_identifier"

	// CategoryGeneric is the default for everything else.
	CategoryGeneric Category = "generic"
)

var categoryWeights = map[Category]int{
	CategoryPIIStrict:       90,
	CategoryPIIContact:      80,
	CategoryDocumentID:      85,
	CategorySensitive:       70,
	CategoryQuasiIdentifier: 60,
	CategoryGeneric:         20,
}

// Weight returns the fixed base risk weight of the category (0 for an
// unknown category).
func (c Category) Weight() int {
	return categoryWeights[c]
}

// Classification is the outcome of classifying one column: a category and
// a 0-100 risk value.
type Classification struct {
	Category Category `json:"category"`
	Risk     int      `json:"risk"`
}

// Classifier combines canonical-name lookup with content-pattern hints to
// classify dataset columns.
type Classifier struct {
	rules    *Rules
	registry *PatternRegistry
}

// NewClassifier creates a classifier over the given rule tables and
// pattern registry.
func NewClassifier(rules *Rules, registry *PatternRegistry) *Classifier {
	return &Classifier{rules: rules, registry: registry}
}

// ClassifyByName classifies a column from its name alone. The canonical
// name is matched against the membership sets in priority order: document
// IDs, contact fields, strict identity fields, sensitive attributes,
// quasi-identifiers; anything else is generic.
func (c *Classifier) ClassifyByName(column string) Classification {
	name := c.rules.Canonical(column)

	switch {
	case c.rules.documentIDs[name]:
		return Classification{CategoryDocumentID, CategoryDocumentID.Weight()}
	case c.rules.contact[name]:
		return Classification{CategoryPIIContact, CategoryPIIContact.Weight()}
	case c.rules.identity[name]:
		return Classification{CategoryPIIStrict, CategoryPIIStrict.Weight()}
	case c.rules.sensitive[name]:
		return Classification{CategorySensitive, CategorySensitive.Weight()}
	case c.rules.quasi[name]:
		return Classification{CategoryQuasiIdentifier, CategoryQuasiIdentifier.Weight()}
	}
	return Classification{CategoryGeneric, CategoryGeneric.Weight()}
}

// Classify classifies a column from its name and an optional content
// sample. An empty sample means name-only classification.
func (c *Classifier) Classify(column, sample string) Classification {
	base := c.ClassifyByName(column)
	if hint, ok := c.registry.FirstMatch(sample); ok {
		return MergeHint(base, hint)
	}
	return base
}

// MergeHint combines a name-based classification with a content hint.
// When the hint's category carries a strictly higher base weight the
// result upgrades to the hint's category with risk = hint weight + bonus;
// otherwise the base category is kept and the bonus is added to the base
// risk. Either way the risk is clamped to 100. Content evidence can
// upgrade a category but never replaces it with a lower-risk one.
func MergeHint(base Classification, hint DetectionHint) Classification {
	if hint.Category.Weight() > base.Category.Weight() {
		return Classification{hint.Category, clampRisk(hint.Category.Weight() + hint.Bonus)}
	}
	return Classification{base.Category, clampRisk(base.Risk + hint.Bonus)}
}

func clampRisk(risk int) int {
	if risk > 100 {
		return 100
	}
	if risk < 0 {
		return 0
	}
	return risk
}

// SuggestStrategy proposes a transform spec for a column from name
// keywords alone. Columns without an obvious handling return "" and are
// left out of suggested plans.
func (c *Classifier) SuggestStrategy(column string) string {
	lc := strings.ToLower(column)
	switch {
	case containsAny(lc, "mail", "correo", "email"):
		return "mask"
	case containsAny(lc, "tel", "phone", "cel"):
		return "mask"
	case containsAny(lc, "dni", "documento", "ruc", "passport", "pasaporte"):
		return "hash:length=16"
	case containsAny(lc, "fecha", "date", "nacimiento", "dob"):
		return "generalize_date:granularity=year"
	case containsAny(lc, "lat", "long", "coord", "ubicacion", "address", "direccion"):
		return "generalize_geo:levels=2"
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
