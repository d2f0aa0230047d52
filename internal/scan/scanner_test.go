package scan

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavgar/patternhunter/internal/pattern"
	"go.uber.org/zap/zaptest"
)

const shopPage = `<html><head><title>10 pieces available</title></head><body>
<div id="offer"><p>Only <b>10 pieces available</b></p><script>var x = "5 customers bought this item";</script></div>
<p style="display: none">3 items sold</p>
<div><span class="timer">%s</span></div>
</body></html>`

func page(timer string) string { return strings.Replace(shopPage, "%s", timer, 1) }

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	s, err := NewScanner(pattern.Default(nil), zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func TestParseHTML(t *testing.T) {
	doc, err := ParseHTMLString(page("00:10"))
	require.NoError(t, err)

	n, ok := doc.Lookup("/html[1]/body[1]/div[1]/p[1]")
	require.True(t, ok)
	assert.Equal(t, "Only 10 pieces available", n.InnerText())
	assert.Equal(t, "p", n.Tag)

	_, ok = doc.Lookup("/html[1]/body[1]/p[1]")
	assert.False(t, ok, "hidden element must be skipped")

	text := doc.VisibleText()
	assert.NotContains(t, text, "customers bought")
	assert.NotContains(t, text, "3 items sold")
	for _, e := range doc.Elements() {
		assert.NotEqual(t, "title", e.Tag)
		assert.NotEqual(t, "script", e.Tag)
		assert.NotEmpty(t, e.Text)
	}
}

func TestParseHTMLLineBreaks(t *testing.T) {
	doc, err := ParseHTMLString(`<body><div><p>a   b</p><p>c<br>d</p><span>e</span></div></body>`)
	require.NoError(t, err)
	n, ok := doc.Lookup("/html[1]/body[1]/div[1]")
	require.True(t, ok)
	assert.Equal(t, "a b\nc\nd\ne", n.Text)
	assert.Equal(t, "a b\nc\nd\ne", doc.VisibleText())
}

func TestPair(t *testing.T) {
	prev, err := ParseHTMLString(page("00:10"))
	require.NoError(t, err)
	cur, err := ParseHTMLString(page("00:05"))
	require.NoError(t, err)

	elems := Pair(cur, prev)
	require.Len(t, elems, len(cur.Elements()))
	for _, e := range elems {
		require.NotNil(t, e.Previous, e.Path)
		assert.Equal(t, e.Path, e.Previous.Path)
	}
	for _, e := range Pair(cur, nil) {
		assert.Nil(t, e.Previous)
	}
}

func TestSnapshotAsPrevious(t *testing.T) {
	s := newTestScanner(t)
	prev, _ := ParseHTMLString(page("00:10"))
	cur, _ := ParseHTMLString(page("00:05"))

	snap := prev.Snapshot()
	assert.Equal(t, prev.VisibleText(), snap.VisibleText())
	assert.Error(t, snap.Render(&strings.Builder{}))
	assert.Equal(t, s.ScanDocuments("shop", cur, prev), s.ScanDocuments("shop", cur, snap))
}

func TestVisibleTextDoesNotRepeatNestedText(t *testing.T) {
	doc, err := ParseHTMLString(`<body><div><section><p>Hello</p></section></div><p>World</p></body>`)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", doc.VisibleText())
}

func TestScanDocuments(t *testing.T) {
	s := newTestScanner(t)
	prev, _ := ParseHTMLString(page("00:10"))
	cur, _ := ParseHTMLString(page("00:05"))

	matches := s.ScanDocuments("shop", cur, prev)
	require.Len(t, matches, 2)

	assert.Equal(t, "scarcity", matches[0].ClassName)
	assert.Equal(t, "/html[1]/body[1]/div[1]/p[1]/b[1]", matches[0].Element)
	assert.Equal(t, "10 pieces available", matches[0].Value)
	assert.Equal(t, "shop", matches[0].Source)

	assert.Equal(t, "countdown", matches[1].ClassName)
	assert.Equal(t, "/html[1]/body[1]/div[2]/span[1]", matches[1].Element)
	assert.Equal(t, "Countdown", matches[1].Pattern)
}

func TestScanWithoutInnermost(t *testing.T) {
	s := newTestScanner(t)
	s.SetInnermost(false)
	doc, _ := ParseHTMLString(page("00:10"))

	matches := s.ScanDocuments("shop", doc, nil)
	var elements []string
	for _, m := range matches {
		assert.Equal(t, "scarcity", m.ClassName)
		elements = append(elements, m.Element)
	}
	assert.Equal(t, []string{
		"/html[1]",
		"/html[1]/body[1]",
		"/html[1]/body[1]/div[1]",
		"/html[1]/body[1]/div[1]/p[1]",
		"/html[1]/body[1]/div[1]/p[1]/b[1]",
	}, elements)
}

func TestScanWithoutPreviousSnapshot(t *testing.T) {
	s := newTestScanner(t)
	matches, err := s.ScanReader("shop", strings.NewReader(page("00:05")))
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotEqual(t, "countdown", m.ClassName)
	}
}

func TestNewScannerRejectsInvalidRegistry(t *testing.T) {
	_, err := NewScanner(pattern.Default(pattern.Messages{}), nil)
	assert.True(t, errors.Is(err, ErrInvalidRegistry))
	assert.True(t, errors.Is(err, pattern.ErrDuplicateName))

	_, err = NewScanner(nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidRegistry))
}

func TestAnnotate(t *testing.T) {
	s := newTestScanner(t)
	prev, _ := ParseHTMLString(page("00:10"))
	cur, _ := ParseHTMLString(page("00:05"))
	matches := s.ScanDocuments("shop", cur, prev)

	assert.Equal(t, 2, Annotate(cur, matches))
	assert.Equal(t, 2, Annotate(cur, matches), "annotating twice must not duplicate classes")

	var sb strings.Builder
	require.NoError(t, cur.Render(&sb))
	out := sb.String()
	assert.Contains(t, out, `<b class="__ph__pattern-detected __ph__scarcity">`)
	assert.Contains(t, out, `<span class="timer __ph__pattern-detected __ph__countdown">`)
}

func TestUniqueMatches(t *testing.T) {
	ms := []Match{
		{Source: "a", Element: "/x", ClassName: "scarcity"},
		{Source: "a", Element: "/x", ClassName: "scarcity"},
		{Source: "a", Element: "/x", ClassName: "countdown"},
		{Source: "b", Element: "/x", ClassName: "scarcity"},
	}
	assert.Len(t, UniqueMatches(ms), 3)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...", truncate("abc", 2))
	assert.Equal(t, "äö...", truncate("äöü", 2))
}
