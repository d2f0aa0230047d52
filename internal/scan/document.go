package scan

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tavgar/patternhunter/internal/pattern"
	"golang.org/x/net/html"
)

// Document is a text snapshot of an HTML page: one pattern.Node per element
// with visible text, in document order.
type Document struct {
	root     *html.Node
	elements []*pattern.Node
	index    map[string]*pattern.Node
	nodes    map[string]*html.Node
	text     string
}

// Element is an element's current state paired with its previous one.
type Element struct {
	Path     string
	Current  *pattern.Node
	Previous *pattern.Node
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tr": true,
	"ul": true,
}

var (
	htmlSpaceRe = regexp.MustCompile(`[ \t\n\r\f]+`)
	hiddenRe    = regexp.MustCompile(`(?i)(?:display\s*:\s*none|visibility\s*:\s*hidden)`)
)

// ParseHTML reads an HTML document and builds its text snapshot. Elements in
// pattern.TagBlacklist, hidden elements and the document head are skipped.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(io.LimitReader(r, MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	d := &Document{
		root:  root,
		index: make(map[string]*pattern.Node),
		nodes: make(map[string]*html.Node),
	}
	d.walk(root, "")
	return d, nil
}

// ParseHTMLString is ParseHTML for in-memory documents.
func ParseHTMLString(s string) (*Document, error) {
	return ParseHTML(strings.NewReader(s))
}

// walk records every element below n and returns the raw text of n's subtree.
func (d *Document) walk(n *html.Node, path string) string {
	var sb strings.Builder
	counts := make(map[string]int)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(htmlSpaceRe.ReplaceAllString(c.Data, " "))
		case html.ElementNode:
			tag := strings.ToLower(c.Data)
			counts[tag]++
			if tag == "head" || pattern.IsBlacklisted(tag) || isHidden(c) {
				continue
			}
			if tag == "br" {
				sb.WriteString("\n")
				continue
			}
			childPath := fmt.Sprintf("%s/%s[%d]", path, tag, counts[tag])
			pos := len(d.elements)
			d.elements = append(d.elements, nil)
			raw := d.walk(c, childPath)
			if text := cleanText(raw); text != "" {
				node := &pattern.Node{Tag: tag, Path: childPath, Text: text}
				d.elements[pos] = node
				d.index[childPath] = node
				d.nodes[childPath] = c
			}
			if blockTags[tag] {
				sb.WriteString("\n" + raw + "\n")
			} else if tag == "td" || tag == "th" {
				sb.WriteString(raw + " ")
			} else {
				sb.WriteString(raw)
			}
		}
	}
	if path == "" {
		d.compact()
		d.text = cleanText(sb.String())
	}
	return sb.String()
}

func (d *Document) compact() {
	out := d.elements[:0]
	for _, e := range d.elements {
		if e != nil {
			out = append(out, e)
		}
	}
	d.elements = out
}

func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "style":
			if hiddenRe.MatchString(a.Val) {
				return true
			}
		}
	}
	return false
}

func cleanText(raw string) string {
	lines := strings.Split(raw, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Trim(l, " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// Elements returns the element snapshots in document order.
func (d *Document) Elements() []*pattern.Node {
	if d == nil {
		return nil
	}
	return d.elements
}

// Lookup returns the snapshot of the element at path.
func (d *Document) Lookup(path string) (*pattern.Node, bool) {
	if d == nil {
		return nil, false
	}
	n, ok := d.index[path]
	return n, ok
}

// VisibleText returns the text of the whole document, one block per line.
func (d *Document) VisibleText() string {
	if d == nil {
		return ""
	}
	return d.text
}

// Snapshot returns a copy of d that keeps only the element texts. It can
// serve as the previous snapshot in Pair but cannot be rendered or annotated.
func (d *Document) Snapshot() *Document {
	if d == nil {
		return nil
	}
	return &Document{elements: d.elements, index: d.index, text: d.text}
}

// Render writes the (possibly annotated) HTML of d to w.
func (d *Document) Render(w io.Writer) error {
	if d.root == nil {
		return errors.New("document has no html tree")
	}
	return html.Render(w, d.root)
}

// Pair matches the elements of cur with their state in prev by element path.
// prev may be nil when there is no earlier snapshot.
func Pair(cur, prev *Document) []Element {
	elems := make([]Element, 0, len(cur.Elements()))
	for _, n := range cur.Elements() {
		old, _ := prev.Lookup(n.Path)
		elems = append(elems, Element{Path: n.Path, Current: n, Previous: old})
	}
	return elems
}
