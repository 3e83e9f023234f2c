package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstMatchPriority(t *testing.T) {
	registry := NewPatternRegistry()

	// Email is checked before phone regardless of position in the text.
	hint, ok := registry.FirstMatch("llamar al 987-654-321 o escribir a juan@mail.com")
	assert.True(t, ok)
	assert.Equal(t, "email", hint.Pattern)
	assert.Equal(t, CategoryPIIContact, hint.Category)
	assert.Equal(t, 20, hint.Bonus)

	hint, ok = registry.FirstMatch("+51 987 654 321")
	assert.True(t, ok)
	assert.Equal(t, "phone", hint.Pattern)

	hint, ok = registry.FirstMatch("nacido el 15/03/1990")
	assert.True(t, ok)
	assert.Equal(t, "date", hint.Pattern)
	assert.Equal(t, CategoryQuasiIdentifier, hint.Category)

	hint, ok = registry.FirstMatch("GB82WEST12345698765432")
	assert.True(t, ok)
	assert.Equal(t, "iban", hint.Pattern)
	assert.Equal(t, CategoryDocumentID, hint.Category)

	_, ok = registry.FirstMatch("nothing sensitive here")
	assert.False(t, ok)

	_, ok = registry.FirstMatch("")
	assert.False(t, ok)
}

// A 16-digit run passes as a card number only when the Luhn checksum
// holds; otherwise no pattern claims it.
func TestFirstMatchLuhnGate(t *testing.T) {
	registry := NewPatternRegistry()

	hint, ok := registry.FirstMatch("4111111111111111")
	assert.True(t, ok)
	assert.Equal(t, "card_number", hint.Pattern)
	assert.Equal(t, CategoryDocumentID, hint.Category)
	assert.Equal(t, 40, hint.Bonus)

	_, ok = registry.FirstMatch("4111111111111112")
	assert.False(t, ok)
}

func TestLuhnValid(t *testing.T) {
	assert.True(t, LuhnValid("4111111111111111"))
	assert.True(t, LuhnValid("4111 1111 1111 1111"))
	assert.True(t, LuhnValid("5500-0000-0000-0004"))
	assert.False(t, LuhnValid("4111111111111112"))
	assert.False(t, LuhnValid("411111")) // too short
	assert.False(t, LuhnValid(""))
}

// AnyMatch skips the Luhn gate: the boolean detector errs on the side of
// flagging.
func TestAnyMatch(t *testing.T) {
	registry := NewPatternRegistry()

	assert.True(t, registry.AnyMatch("4111111111111112"))
	assert.True(t, registry.AnyMatch("-12.046374, -77.042793"))
	assert.True(t, registry.AnyMatch("192.168.1.10"))
	assert.False(t, registry.AnyMatch("nothing sensitive"))
}

func TestMatchCount(t *testing.T) {
	registry := NewPatternRegistry()

	assert.Equal(t, 2, registry.MatchCount("a@b.com c@d.com"))
	assert.Equal(t, 0, registry.MatchCount("plain text"))
}
