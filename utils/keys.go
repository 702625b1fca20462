package utils

import (
	"sort"
	"strings"
)

// NormaliseKey lower cases and trims so "  Sia " and "sia" share a cache entry
func NormaliseKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// JoinIds builds an order independent key from a list of ids
func JoinIds(ids []string) string {
	sorted := make([]string, 0, len(ids))

	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			sorted = append(sorted, id)
		}
	}

	sort.Strings(sorted)

	return strings.Join(sorted, ",")
}

// SplitIds parses a comma separated query parameter
func SplitIds(value string) []string {
	ids := make([]string, 0)

	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	return ids
}
