package report

import "strings"

// Wrap breaks text into lines no wider than maxWidth using greedy word
// wrapping. Empty or blank input yields no lines. A single word wider than
// maxWidth gets a line of its own.
func Wrap(text string, maxWidth float64, width func(string) float64) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !strings.ContainsAny(text, "\n\t") && width(text) <= maxWidth {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && width(candidate) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
