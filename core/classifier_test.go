package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultRules(), NewPatternRegistry())
}

func TestClassifyByName(t *testing.T) {
	c := newTestClassifier()

	cases := []struct {
		column   string
		category Category
		risk     int
	}{
		{"DNI", CategoryDocumentID, 85},
		{"Correo Electrónico", CategoryPIIContact, 80},
		{"nombres", CategoryPIIStrict, 90},
		{"Género", CategorySensitive, 70},
		{"distrito", CategoryQuasiIdentifier, 60},
		{"observaciones", CategoryGeneric, 20},
	}

	for _, tc := range cases {
		got := c.ClassifyByName(tc.column)
		assert.Equal(t, tc.category, got.Category, "column %q", tc.column)
		assert.Equal(t, tc.risk, got.Risk, "column %q", tc.column)
	}
}

// A content hint with a higher-weight category upgrades the
// classification; the risk is the hint weight plus its bonus, clamped.
func TestClassifyContentUpgrade(t *testing.T) {
	c := newTestClassifier()

	got := c.Classify("notes", "4111111111111111")
	assert.Equal(t, CategoryDocumentID, got.Category)
	assert.Equal(t, 100, got.Risk) // 85 + 40 clamped

	got = c.Classify("observaciones", "escribir a juan@mail.com")
	assert.Equal(t, CategoryPIIContact, got.Category)
	assert.Equal(t, 100, got.Risk) // 80 + 20 clamped
}

// A lower-weight hint never downgrades the category; its bonus still
// raises the risk.
func TestClassifyContentNeverDowngrades(t *testing.T) {
	c := newTestClassifier()

	got := c.Classify("dni", "nacido el 15/03/1990")
	assert.Equal(t, CategoryDocumentID, got.Category)
	assert.Equal(t, 95, got.Risk) // 85 + date bonus 10
}

func TestClassifyEmptySample(t *testing.T) {
	c := newTestClassifier()

	got := c.Classify("dni", "")
	assert.Equal(t, Classification{CategoryDocumentID, 85}, got)
}

func TestMergeHintClamping(t *testing.T) {
	base := Classification{CategoryGeneric, 20}
	hint := DetectionHint{Pattern: "email", Category: CategoryPIIContact, Bonus: 20}

	got := MergeHint(base, hint)
	assert.Equal(t, CategoryPIIContact, got.Category)
	assert.Equal(t, 100, got.Risk)

	// Same-weight hint keeps the base category and adds the bonus.
	got = MergeHint(Classification{CategoryPIIContact, 80}, hint)
	assert.Equal(t, CategoryPIIContact, got.Category)
	assert.Equal(t, 100, got.Risk)
}

func TestSuggestStrategy(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, "mask", c.SuggestStrategy("correo_electronico"))
	assert.Equal(t, "mask", c.SuggestStrategy("telefono"))
	assert.Equal(t, "hash:length=16", c.SuggestStrategy("numero_dni"))
	assert.Equal(t, "generalize_date:granularity=year", c.SuggestStrategy("fecha_registro"))
	assert.Equal(t, "generalize_geo:levels=2", c.SuggestStrategy("direccion"))
	assert.Equal(t, "", c.SuggestStrategy("total"))
}
