package pattern

import (
	"regexp"
	"strings"
)

// ClassPrefix is prepended to every CSS class added to page elements.
const ClassPrefix = "__ph__"

const (
	// DetectedClassName marks elements detected as patterns.
	DetectedClassName = ClassPrefix + "pattern-detected"

	// CurrentPatternClassName marks the element currently shown in a detail view.
	CurrentPatternClassName = ClassPrefix + "current-pattern"
)

// TagBlacklist lists HTML tags that are removed before element text is computed.
var TagBlacklist = []string{"script", "style", "noscript", "audio", "video"}

// IsBlacklisted reports whether tag is in TagBlacklist.
func IsBlacklisted(tag string) bool {
	tag = strings.ToLower(tag)
	for _, t := range TagBlacklist {
		if t == tag {
			return true
		}
	}
	return false
}

// Node is the observed state of a single page element.
type Node struct {
	Tag  string `json:"tag"`
	Path string `json:"path"`
	Text string `json:"text"`
}

// InnerText returns the trimmed visible text of n. A nil node has no text.
func (n *Node) InnerText() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

// Predicate decides whether a pattern is present in node, given the previous
// state prev of the same element. prev is nil when there is no prior observation.
type Predicate func(node, prev *Node) bool

// Definition describes one dark pattern and how to detect it.
type Definition struct {
	Name      string      `json:"name"`
	ClassName string      `json:"className"`
	Detectors []Predicate `json:"-"`
	InfoURL   string      `json:"infoUrl"`
	Info      string      `json:"info"`
	Languages []string    `json:"languages"`
}

// Detect reports whether any detector of d matches.
func (d Definition) Detect(node, prev *Node) bool {
	for _, f := range d.Detectors {
		if f != nil && f(node, prev) {
			return true
		}
	}
	return false
}

// jsSpace matches the characters browsers treat as \s.
const jsSpace = `[\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]`

// compile builds a case-insensitive expression whose \s also covers Unicode spaces.
func compile(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + strings.ReplaceAll(expr, `\s`, jsSpace))
}

// textRule returns a predicate that tests the current text against any of res.
func textRule(res ...*regexp.Regexp) Predicate {
	return func(node, _ *Node) bool {
		text := node.InnerText()
		if text == "" {
			return false
		}
		for _, re := range res {
			if re.MatchString(text) {
				return true
			}
		}
		return false
	}
}
