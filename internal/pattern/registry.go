package pattern

import "slices"

// Registry is the ordered, read-only set of configured patterns together with
// their validity, computed once when the registry is built.
type Registry struct {
	patterns []Definition
	valid    bool
	err      error
}

// NewRegistry copies defs and validates them.
func NewRegistry(defs []Definition) *Registry {
	patterns := cloneDefinitions(defs)
	err := Check(patterns)
	return &Registry{patterns: patterns, valid: err == nil, err: err}
}

// Default builds the registry of built-in patterns with texts from res.
func Default(res Resolver) *Registry {
	return NewRegistry(Builtin(res))
}

// Patterns returns the definitions in registry order.
func (r *Registry) Patterns() []Definition {
	return cloneDefinitions(r.patterns)
}

func cloneDefinitions(defs []Definition) []Definition {
	out := make([]Definition, len(defs))
	for i, d := range defs {
		out[i] = d.clone()
	}
	return out
}

// clone copies d including its slices, so the copy shares no state with d.
func (d Definition) clone() Definition {
	d.Detectors = slices.Clone(d.Detectors)
	d.Languages = slices.Clone(d.Languages)
	return d
}

// Len returns the number of definitions.
func (r *Registry) Len() int { return len(r.patterns) }

// Valid reports whether the registry passed validation.
func (r *Registry) Valid() bool { return r.valid }

// Err returns the validation failure, or nil for a valid registry.
func (r *Registry) Err() error { return r.err }

// Lookup finds a definition by name or class name.
func (r *Registry) Lookup(key string) (Definition, bool) {
	for _, p := range r.patterns {
		if p.Name == key || p.ClassName == key {
			return p.clone(), true
		}
	}
	return Definition{}, false
}

// Builtin returns the built-in pattern definitions. Names, explanations and
// URLs are resolved through res; a nil res uses DefaultMessages.
func Builtin(res Resolver) []Definition {
	if res == nil {
		res = DefaultMessages
	}
	return []Definition{
		{
			Name:      res.Message("patternCountdown_name"),
			ClassName: "countdown",
			Detectors: []Predicate{countdown},
			InfoURL:   res.Message("patternCountdown_infoUrl"),
			Info:      res.Message("patternCountdown_info"),
			Languages: []string{"en", "de"},
		},
		{
			Name:      res.Message("patternScarcity_name"),
			ClassName: "scarcity",
			Detectors: []Predicate{textRule(scarcityEN), textRule(scarcityDE)},
			InfoURL:   res.Message("patternScarcity_infoUrl"),
			Info:      res.Message("patternScarcity_info"),
			Languages: []string{"en", "de"},
		},
		{
			Name:      res.Message("patternSocialProof_name"),
			ClassName: "social-proof",
			Detectors: []Predicate{textRule(socialProofEN), textRule(socialProofDE)},
			InfoURL:   res.Message("patternSocialProof_infoUrl"),
			Info:      res.Message("patternSocialProof_info"),
			Languages: []string{"en", "de"},
		},
		{
			Name:      res.Message("patternForcedContinuity_name"),
			ClassName: "forced-continuity",
			Detectors: []Predicate{
				textRule(forcedContinuityENRes...),
				textRule(forcedContinuityDERes...),
			},
			InfoURL:   res.Message("patternForcedContinuity_infoUrl"),
			Info:      res.Message("patternForcedContinuity_info"),
			Languages: []string{"en", "de"},
		},
	}
}

var (
	forcedContinuityENRes = compileAll(forcedContinuityEN)
	forcedContinuityDERes = compileAll(forcedContinuityDE)
)
