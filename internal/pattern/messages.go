package pattern

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Resolver looks up localized strings by message key.
type Resolver interface {
	Message(key string) string
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(key string) string

func (f ResolverFunc) Message(key string) string { return f(key) }

// Messages is a static key to text table. Unknown keys resolve to "".
type Messages map[string]string

func (m Messages) Message(key string) string { return m[key] }

// Fallback returns a Resolver that consults m first and then next.
func (m Messages) Fallback(next Resolver) Resolver {
	return ResolverFunc(func(key string) string {
		if v := m[key]; v != "" {
			return v
		}
		if next == nil {
			return ""
		}
		return next.Message(key)
	})
}

// DefaultMessages holds the built-in English texts.
var DefaultMessages = Messages{
	"patternCountdown_name":    "Countdown",
	"patternCountdown_info":    "The countdown pattern suggests that a product or service is only available for a limited time, shown as a running clock.",
	"patternCountdown_infoUrl": "https://dapde.de/en/dark-patterns-en/types-and-examples-en/countdown-en/",

	"patternScarcity_name":    "Scarcity",
	"patternScarcity_info":    "The scarcity pattern suggests that goods or services are only available in limited numbers.",
	"patternScarcity_infoUrl": "https://dapde.de/en/dark-patterns-en/types-and-examples-en/scarcity-pattern-en/",

	"patternSocialProof_name":    "Social Proof",
	"patternSocialProof_info":    "The social proof pattern shows activity or reviews of other users to push the purchase decision.",
	"patternSocialProof_infoUrl": "https://dapde.de/en/dark-patterns-en/types-and-examples-en/social-proof-en/",

	"patternForcedContinuity_name":    "Forced Continuity",
	"patternForcedContinuity_info":    "The forced continuity pattern turns a free or cheap trial into a paid subscription and hides the follow-up costs.",
	"patternForcedContinuity_infoUrl": "https://dapde.de/en/dark-patterns-en/types-and-examples-en/forced-continuity-en/",
}

// LoadMessages reads a message table from path. Files ending in .json are
// read in the browser extension format {"key": {"message": "..."}}, anything
// else as a flat YAML mapping of keys to strings.
func LoadMessages(path string) (Messages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := make(Messages)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var raw map[string]struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse messages %s: %w", path, err)
		}
		for k, v := range raw {
			out[k] = v.Message
		}
		return out, nil
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse messages %s: %w", path, err)
	}
	return out, nil
}
