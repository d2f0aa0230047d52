package scan

import (
	"strings"

	"github.com/tavgar/patternhunter/internal/pattern"
	"golang.org/x/net/html"
)

// Annotate adds the detected marker class and the pattern's own class to
// every element of d named by matches. It returns the number of elements
// that were changed.
func Annotate(d *Document, matches []Match) int {
	changed := make(map[string]struct{})
	for _, m := range matches {
		n, ok := d.nodes[m.Element]
		if !ok {
			continue
		}
		classes := []string{pattern.DetectedClassName, pattern.ClassPrefix + m.ClassName}
		found := false
		for i, a := range n.Attr {
			if a.Namespace != "" || strings.ToLower(a.Key) != "class" {
				continue
			}
			n.Attr[i].Val = addClasses(a.Val, classes)
			found = true
			break
		}
		if !found {
			n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
		}
		changed[m.Element] = struct{}{}
	}
	return len(changed)
}

func addClasses(existing string, add []string) string {
	fields := strings.Fields(existing)
	for _, c := range add {
		present := false
		for _, f := range fields {
			if f == c {
				present = true
				break
			}
		}
		if !present {
			fields = append(fields, c)
		}
	}
	return strings.Join(fields, " ")
}
