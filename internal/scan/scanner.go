package scan

import (
	"errors"
	"io"
	"strings"

	"github.com/tavgar/patternhunter/internal/pattern"
	"go.uber.org/zap"
)

// ErrInvalidRegistry is returned when a Scanner is built from a registry
// that failed validation.
var ErrInvalidRegistry = errors.New("pattern registry is invalid")

// Match represents a single detected pattern on a page element
type Match struct {
	Source    string `json:"source"`
	Pattern   string `json:"pattern"`
	ClassName string `json:"className"`
	Element   string `json:"element"`
	Tag       string `json:"tag"`
	Value     string `json:"value"`
	InfoURL   string `json:"infoUrl,omitempty"`
}

// Scanner runs the detectors of a validated registry over page elements
type Scanner struct {
	registry  *pattern.Registry
	patterns  []pattern.Definition
	innermost bool
	logger    *zap.Logger
}

// NewScanner creates a Scanner. It refuses registries whose validity flag is false.
func NewScanner(reg *pattern.Registry, logger *zap.Logger) (*Scanner, error) {
	if reg == nil || !reg.Valid() {
		if reg != nil && reg.Err() != nil {
			return nil, errors.Join(ErrInvalidRegistry, reg.Err())
		}
		return nil, ErrInvalidRegistry
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		registry:  reg,
		patterns:  reg.Patterns(),
		innermost: true,
		logger:    logger,
	}, nil
}

// SetInnermost controls whether an element is reported for a pattern that
// one of its descendants already reports. Enabled by default.
func (s *Scanner) SetInnermost(on bool) { s.innermost = on }

// Registry returns the registry the scanner was built from.
func (s *Scanner) Registry() *pattern.Registry { return s.registry }

// Scan evaluates every pattern against every element.
func (s *Scanner) Scan(source string, elems []Element) []Match {
	var matches []Match
	for _, e := range elems {
		for _, p := range s.patterns {
			if !p.Detect(e.Current, e.Previous) {
				continue
			}
			matches = append(matches, Match{
				Source:    source,
				Pattern:   p.Name,
				ClassName: p.ClassName,
				Element:   e.Path,
				Tag:       e.Current.Tag,
				Value:     truncate(e.Current.InnerText(), MaxValueDisplayLength),
				InfoURL:   p.InfoURL,
			})
		}
	}
	if s.innermost {
		matches = innermostOnly(matches)
	}
	s.logger.Debug("scanned elements",
		zap.String("source", source),
		zap.Int("elements", len(elems)),
		zap.Int("matches", len(matches)))
	return matches
}

// ScanDocuments scans cur, comparing each element with its state in prev.
func (s *Scanner) ScanDocuments(source string, cur, prev *Document) []Match {
	return s.Scan(source, Pair(cur, prev))
}

// ScanReader parses a single HTML snapshot from r and scans it. Countdowns
// cannot be detected without a previous snapshot.
func (s *Scanner) ScanReader(source string, r io.Reader) ([]Match, error) {
	doc, err := ParseHTML(r)
	if err != nil {
		return nil, err
	}
	return s.ScanDocuments(source, doc, nil), nil
}

// innermostOnly drops matches whose element contains another element
// reported for the same pattern.
func innermostOnly(ms []Match) []Match {
	byPattern := make(map[string][]string)
	for _, m := range ms {
		byPattern[m.ClassName] = append(byPattern[m.ClassName], m.Element)
	}
	out := ms[:0]
	for _, m := range ms {
		ancestor := false
		for _, p := range byPattern[m.ClassName] {
			if strings.HasPrefix(p, m.Element+"/") {
				ancestor = true
				break
			}
		}
		if !ancestor {
			out = append(out, m)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
