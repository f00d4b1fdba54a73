// Package rules loads YAML files that tune the validator: an optional
// rules file overriding the guard configuration, and a schema file
// describing the queryable table for deployments without a database.
package rules

import (
	"fmt"
	"os"

	"github.com/sqlward/sqlward/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Rules is the YAML-settable subset of the validator configuration.
// Nil/empty fields leave the corresponding defaults untouched.
type Rules struct {
	DangerousKeywords   []string `yaml:"dangerous_keywords"`
	MaxQueryLength      *int     `yaml:"max_query_length"`
	SimilarityThreshold *float64 `yaml:"similarity_threshold"`
}

// LoadFromFile reads a YAML rules file and returns validated Rules.
func LoadFromFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rules YAML: %w", err)
	}

	if err := validate(&r); err != nil {
		return nil, fmt.Errorf("validating rules: %w", err)
	}

	return &r, nil
}

func validate(r *Rules) error {
	for i, kw := range r.DangerousKeywords {
		if kw == "" {
			return fmt.Errorf("dangerous_keywords[%d] is empty", i)
		}
	}
	if r.MaxQueryLength != nil && *r.MaxQueryLength <= 0 {
		return fmt.Errorf("max_query_length must be positive, got %d", *r.MaxQueryLength)
	}
	if r.SimilarityThreshold != nil && (*r.SimilarityThreshold < 0 || *r.SimilarityThreshold > 1) {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %v", *r.SimilarityThreshold)
	}
	return nil
}

// Apply overlays the rules onto cfg and returns the result.
func (r *Rules) Apply(cfg domain.Config) domain.Config {
	if len(r.DangerousKeywords) > 0 {
		cfg.DangerousKeywords = r.DangerousKeywords
	}
	if r.MaxQueryLength != nil {
		cfg.MaxQueryLength = *r.MaxQueryLength
	}
	if r.SimilarityThreshold != nil {
		cfg.SimilarityThreshold = *r.SimilarityThreshold
	}
	return cfg
}
