package pattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) *Node { return &Node{Tag: "div", Text: s} }

func detector(t *testing.T, class string) Definition {
	t.Helper()
	d, ok := Default(nil).Lookup(class)
	require.True(t, ok, "pattern %s not registered", class)
	return d
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		name string
		prev string
		cur  string
		want bool
	}{
		{"decreasing clock", "00:10", "00:05", true},
		{"increasing clock", "00:05", "00:10", false},
		{"no previous text", "", "00:05", false},
		{"unchanged", "12:30:00", "12:30:00", false},
		{"hours minutes seconds", "Ends in 01:20:30", "Ends in 01:20:29", true},
		{"unit words", "Only 10 minutes remaining", "Only 9 minutes remaining", true},
		{"four part clock", "23:59:58:10", "23:59:58:09", false},
		{"long numbers are stripped", "Phone: 123-456", "Phone: 123-455", false},
		{"different token count", "00:10 and 00:20", "00:09", false},
		{"first greater component stops pair", "01:00", "02:00", false},
		{"second pair confirms", "05:00 | 10:00", "06:00 | 09:00", true},
		{"unit words with following number are stripped", "10 days 5 hours", "9 days 5 hours", false},
	}
	d := detector(t, "countdown")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countdown(text(tt.cur), text(tt.prev)))
			assert.Equal(t, tt.want, d.Detect(text(tt.cur), text(tt.prev)))
		})
	}
}

func TestCountdownMissingNodes(t *testing.T) {
	assert.False(t, countdown(nil, nil))
	assert.False(t, countdown(text("00:05"), nil))
	assert.False(t, countdown(nil, text("00:10")))
}

func TestCompareDigits(t *testing.T) {
	assert.Equal(t, 0, compareDigits("007", "7"))
	assert.Equal(t, -1, compareDigits("99", "100"))
	assert.Equal(t, 1, compareDigits("12345678901234567890123", "12345678901234567890122"))
	assert.Equal(t, 0, compareDigits("0", "00"))
}

func TestTextPatterns(t *testing.T) {
	tests := []struct {
		class string
		text  string
		want  bool
	}{
		{"scarcity", "10 pieces available", true},
		{"scarcity", "99% claimed", true},
		{"scarcity", "Only 3 items sold", true},
		{"scarcity", "Last item in stock", true},
		{"scarcity", "10 Stück verfügbar", true},
		{"scarcity", "99% EINGELÖST", true},
		{"scarcity", "Nur noch: letzter Artikel", true},
		{"scarcity", "Phone: 123-456", false},
		{"scarcity", "Free shipping", false},

		{"social-proof", "5 other customers also bought this item", true},
		{"social-proof", "6 buyers have rated the following products", true},
		{"social-proof", "12 PEOPLE PURCHASED THIS PRODUCT", true},
		{"social-proof", "5 andere Kunden kauften auch diesen Artikel", true},
		{"social-proof", "6 Käufer*innen haben folgende Produkte", true},
		{"social-proof", "5 dollars saved", false},

		{"forced-continuity", "$10.99/month after 12 months", true},
		{"forced-continuity", "11 GBP a month from month 4", true},
		{"forced-continuity", "$10.99 after 12 months", true},
		{"forced-continuity", "after that $23.99 per month", true},
		{"forced-continuity", "then GBP 10pm", true},
		{"forced-continuity", "after the 24th months only €23.99", true},
		{"forced-continuity", "10,99 Euro pro Monat ab dem 12. Monat", true},
		{"forced-continuity", "11€ nach 30 Tagen", true},
		{"forced-continuity", "anschließend 23,99€ pro Monat", true},
		{"forced-continuity", "10 Euro/Monat danach", true},
		{"forced-continuity", "ab dem 24. Monat nur 23,99 Euro", true},
		{"forced-continuity", "$10.99 one-time fee", false},
	}
	for _, tt := range tests {
		t.Run(tt.class+"/"+tt.text, func(t *testing.T) {
			d := detector(t, tt.class)
			assert.Equal(t, tt.want, d.Detect(text(tt.text), nil))
		})
	}
}

func TestUnicodeWhitespace(t *testing.T) {
	d := detector(t, "scarcity")
	assert.True(t, d.Detect(text("10\u00a0pieces\u2009available"), nil))
}

func TestDetectorsArePure(t *testing.T) {
	cur, prev := text("00:05"), text("00:10")
	for _, d := range Default(nil).Patterns() {
		for _, f := range d.Detectors {
			assert.Equal(t, f(cur, prev), f(cur, prev), d.Name)
		}
	}
}

func TestDetectOrderIndependent(t *testing.T) {
	d := detector(t, "scarcity")
	reversed := d
	reversed.Detectors = []Predicate{d.Detectors[1], d.Detectors[0]}
	for _, s := range []string{"10 Stück verfügbar", "10 pieces available", "nothing"} {
		assert.Equal(t, d.Detect(text(s), nil), reversed.Detect(text(s), nil), s)
	}
}

func TestIsBlacklisted(t *testing.T) {
	assert.True(t, IsBlacklisted("SCRIPT"))
	assert.True(t, IsBlacklisted("video"))
	assert.False(t, IsBlacklisted("div"))
	assert.Equal(t, "__ph__pattern-detected", DetectedClassName)
	assert.Equal(t, "__ph__current-pattern", CurrentPatternClassName)
}

func TestLoadMessages(t *testing.T) {
	dir := t.TempDir()

	yml := filepath.Join(dir, "messages.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("patternCountdown_name: Zeitdruck\n"), 0o644))
	m, err := LoadMessages(yml)
	require.NoError(t, err)
	assert.Equal(t, "Zeitdruck", m.Message("patternCountdown_name"))

	js := filepath.Join(dir, "messages.json")
	require.NoError(t, os.WriteFile(js, []byte(`{"patternScarcity_name":{"message":"Knappheit"}}`), 0o644))
	m, err = LoadMessages(js)
	require.NoError(t, err)
	assert.Equal(t, "Knappheit", m.Message("patternScarcity_name"))

	reg := Default(m.Fallback(DefaultMessages))
	require.True(t, reg.Valid())
	_, ok := reg.Lookup("Knappheit")
	assert.True(t, ok)

	_, err = LoadMessages(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
