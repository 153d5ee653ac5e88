// Package strings holds small helpers for parsing list-valued settings.
package strings

import (
	"strings"
)

// SplitList splits raw on sep, trims each element and drops empties and
// repeats. Order of first appearance is kept.
//
//	SplitList(" a:9092, b:9092,,a:9092 ", ",") // []string{"a:9092", "b:9092"}
func SplitList(raw, sep string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return Dedupe(strings.Split(raw, sep))
}

// Dedupe trims values and removes empties and duplicates.
func Dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
