// Package strings holds small slice-of-string helpers used when reading
// comma-separated configuration.
package strings

import "strings"

// SplitList splits raw on sep and returns the trimmed, non-empty,
// de-duplicated parts in their original order.
//
//	SplitList(" k1:9092, k2:9092,,k1:9092 ", ",") // []string{"k1:9092", "k2:9092"}
func SplitList(raw, sep string) []string {
	return DedupeAndTrim(strings.Split(raw, sep))
}

// DedupeAndTrim removes duplicates and blanks, trimming each element.
// Order is preserved. A nil or empty input yields nil.
func DedupeAndTrim(values []string) []string {
	var result []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
