package scan

// UniqueMatches returns a new slice containing only the first occurrence of each
// source/element/pattern triple from ms. The original order is preserved for the
// first occurrence.
func UniqueMatches(ms []Match) []Match {
	seen := make(map[string]struct{})
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		key := m.Source + "|" + m.Element + "|" + m.ClassName
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}
