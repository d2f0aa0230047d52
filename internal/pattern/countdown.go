package pattern

import (
	"regexp"
	"strings"
)

var (
	// countdownRe matches "00:05:10", "5:10", "2 days", "10 minutes remaining".
	countdownRe = compile(`(\d{1,2}:\d{1,2}(:\d{1,2})?)|(\d+\s*(days?|hours?|minutes?|seconds?|hrs?|mins?|secs?)\s*(left|remaining)?)`)

	// invalidCountdownRe matches sequences that only look like countdowns,
	// such as "23:59:58:10" or "Phone: 123-456".
	invalidCountdownRe = compile(`(\d{1,2}:\d{1,2}:\d{1,2}:\d{1,2})|(\d+\s*\w+\s*\d+\s*\w+)`)

	digitsRe = regexp.MustCompile(`\d+`)
)

// countdown reports whether the time values in node decreased compared to prev.
func countdown(node, prev *Node) bool {
	current := node.InnerText()
	old := prev.InnerText()
	if current == "" || old == "" {
		return false
	}

	currentMatches := countdownRe.FindAllString(invalidCountdownRe.ReplaceAllString(current, ""), -1)
	oldMatches := countdownRe.FindAllString(invalidCountdownRe.ReplaceAllString(old, ""), -1)
	if len(currentMatches) == 0 || len(currentMatches) != len(oldMatches) {
		return false
	}

	for i := range currentMatches {
		currentNums := digitsRe.FindAllString(currentMatches[i], -1)
		oldNums := digitsRe.FindAllString(oldMatches[i], -1)
		if len(currentNums) == 0 || len(currentNums) != len(oldNums) {
			continue
		}
		for x := range currentNums {
			c := compareDigits(currentNums[x], oldNums[x])
			if c > 0 {
				break
			}
			if c < 0 {
				return true
			}
		}
	}
	return false
}

// compareDigits compares two decimal digit strings by numeric value.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
