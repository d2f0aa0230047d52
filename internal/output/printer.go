package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tavgar/patternhunter/internal/pattern"
	"github.com/tavgar/patternhunter/internal/scan"
)

var (
	patternStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	elementStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	sourceStyle  = lipgloss.NewStyle().Faint(true)
	validStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Printer handles output rendering
type Printer struct {
	format     string
	banner     bool
	showSource bool
	version    string
}

// NewPrinter creates a printer
func NewPrinter(format string, banner bool, showSource bool, version string) *Printer {
	return &Printer{format: format, banner: banner, showSource: showSource, version: version}
}

// Print writes matches to w
func (p *Printer) Print(w io.Writer, matches []scan.Match) error {
	if p.banner {
		fmt.Fprintln(w, Banner(p.version))
	}

	if p.format == "pretty" {
		for _, m := range matches {
			line := fmt.Sprintf("%s %s %s",
				patternStyle.Render("["+m.Pattern+"]"),
				elementStyle.Render(m.Element),
				oneLine(m.Value))
			if p.showSource {
				line = sourceStyle.Render(m.Source+":") + " " + line
			}
			fmt.Fprintln(w, line)
		}
		return nil
	}

	type outMatch struct {
		Source    string `json:"source,omitempty"`
		Pattern   string `json:"pattern"`
		ClassName string `json:"className"`
		Element   string `json:"element"`
		Value     string `json:"value"`
		InfoURL   string `json:"infoUrl,omitempty"`
	}
	out := make([]outMatch, 0, len(matches))
	for _, m := range matches {
		om := outMatch{Pattern: m.Pattern, ClassName: m.ClassName, Element: m.Element, Value: m.Value, InfoURL: m.InfoURL}
		if p.showSource {
			om.Source = m.Source
		}
		out = append(out, om)
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// PrintPatterns writes the registry contents and its validity to w
func (p *Printer) PrintPatterns(w io.Writer, reg *pattern.Registry) error {
	if p.format == "pretty" {
		status := validStyle.Render("valid")
		if !reg.Valid() {
			status = invalidStyle.Render("invalid: " + reg.Err().Error())
		}
		fmt.Fprintf(w, "registry: %s\n", status)
		for _, d := range reg.Patterns() {
			fmt.Fprintf(w, "%s (%s) [%s]\n  %s\n  %s\n",
				patternStyle.Render(d.Name), d.ClassName, strings.Join(d.Languages, ", "), d.Info, d.InfoURL)
		}
		return nil
	}

	out := struct {
		Valid    bool                 `json:"valid"`
		Error    string               `json:"error,omitempty"`
		Patterns []pattern.Definition `json:"patterns"`
	}{Valid: reg.Valid(), Patterns: reg.Patterns()}
	if err := reg.Err(); err != nil {
		out.Error = err.Error()
	}
	return json.NewEncoder(w).Encode(out)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
