package domain

import (
	"sort"
	"strings"
)

// maxSuggestions caps how many similar column names a single
// missing-column error carries.
const maxSuggestions = 3

// similarColumns returns up to three schema columns whose similarity to
// name clears the configured threshold, most similar first. Ties keep
// column declaration order, so identical inputs always yield identical
// suggestions.
func (v *Validator) similarColumns(name string, schema SchemaContext) []string {
	type scored struct {
		name  string
		score float64
	}

	lower := strings.ToLower(name)
	var candidates []scored
	for _, col := range schema.Columns {
		score := similarityRatio(lower, strings.ToLower(col.Name))
		if score >= v.cfg.SimilarityThreshold {
			candidates = append(candidates, scored{name: col.Name, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}

// similarityRatio is a normalized edit-distance similarity in [0,1]:
// 1 for identical strings, 0 for nothing in common.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes the edit distance between two strings with the
// usual dynamic-programming matrix.
func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}
