package main

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/goliatone/go-widgetgen/pkg/page"
)

// suggest returns the candidate closest to value, or "" when nothing is close
// enough to be a likely typo.
func suggest(value string, candidates []string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	best, bestDist := "", -1
	for _, candidate := range candidates {
		dist := levenshtein.ComputeDistance(value, strings.ToLower(candidate))
		if bestDist < 0 || dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	limit := len(value) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

// matchOption resolves a value given on the command line against the options
// of a select, hinting at the closest option when there is no exact match.
func matchOption(kind, value string, options []page.SelectOption) (string, error) {
	value = strings.TrimSpace(value)
	var values []string
	for _, opt := range options {
		if opt.Value == "" {
			continue
		}
		if opt.Value == value {
			return value, nil
		}
		values = append(values, opt.Value)
	}
	if hint := suggest(value, values); hint != "" {
		return "", fmt.Errorf("unknown %s %q, did you mean %q?", kind, value, hint)
	}
	return "", fmt.Errorf("unknown %s %q (available: %s)", kind, value, strings.Join(values, ", "))
}
