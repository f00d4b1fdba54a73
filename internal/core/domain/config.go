package domain

// Config tunes the validation pipeline. The zero value is not usable;
// call DefaultConfig and override fields as needed.
type Config struct {
	// MaxQueryLength bounds the raw query size before any parsing work.
	MaxQueryLength int

	// DangerousKeywords are rejected wherever they appear as whole words,
	// regardless of context. Matching is case-insensitive.
	DangerousKeywords []string

	// SimilarityThreshold is the minimum normalized Levenshtein ratio
	// (0..1) for a schema column to be offered as a correction.
	SimilarityThreshold float64
}

// DefaultConfig returns the standard guard configuration: write/DDL
// keywords blocked, queries capped at 5000 characters, suggestions at
// 0.6 similarity or better.
func DefaultConfig() Config {
	return Config{
		MaxQueryLength: 5000,
		DangerousKeywords: []string{
			"DROP", "DELETE", "UPDATE", "INSERT", "ALTER",
			"CREATE", "TRUNCATE", "EXEC", "GRANT", "REVOKE",
		},
		SimilarityThreshold: 0.6,
	}
}
