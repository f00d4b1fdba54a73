// Package domain holds the pure validation pipeline: given an arbitrary
// SQL string and the schema of the single queryable table, decide
// whether the query is safe, well-formed and schema-compatible before
// any execution engine sees it.
package domain

import (
	"regexp"
)

// Validator runs the three-stage pipeline (security → syntax → schema)
// and normalizes queries that pass. It holds only compiled configuration
// and is safe for concurrent use; every call allocates its own transient
// state.
type Validator struct {
	cfg             Config
	keywordPatterns []*regexp.Regexp
}

// quotedIdentifierPattern matches a double-quoted, word-shaped
// identifier such as "ColumnName".
var quotedIdentifierPattern = regexp.MustCompile(`"([A-Za-z_][A-Za-z0-9_]*)"`)

// NewValidator compiles the configuration into a reusable Validator.
// Zero-valued config fields fall back to DefaultConfig.
func NewValidator(cfg Config) *Validator {
	def := DefaultConfig()
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = def.MaxQueryLength
	}
	if len(cfg.DangerousKeywords) == 0 {
		cfg.DangerousKeywords = def.DangerousKeywords
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = def.SimilarityThreshold
	}

	v := &Validator{cfg: cfg}
	for _, kw := range cfg.DangerousKeywords {
		v.keywordPatterns = append(v.keywordPatterns,
			regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return v
}

// Config returns the effective configuration the validator runs with.
func (v *Validator) Config() Config {
	return v.cfg
}

// Validate runs the full pipeline against sql and schema. Stages
// short-circuit: a security finding stops everything, a syntax finding
// stops before schema matching. Warnings never affect validity, and
// NormalizedSQL is present exactly when the result is valid. Validate
// never panics on malformed input; parser failures surface as syntax
// errors.
func (v *Validator) Validate(sql string, schema SchemaContext) ValidationResult {
	// Quoted identifiers are unwrapped once, up front, so that
	// case-sensitive quoting cannot defeat the case-insensitive column
	// lookup. Every stage below operates on the rewritten text.
	sql = stripQuotedIdentifiers(sql)

	if errs := v.checkSecurity(sql); len(errs) > 0 {
		return ValidationResult{Errors: errs}
	}

	tree, errs := v.checkSyntax(sql)
	if len(errs) > 0 {
		return ValidationResult{Errors: errs}
	}

	ids := extractIdentifiers(tree)
	errs, warns := v.validateSchema(schema, ids)
	if len(errs) > 0 {
		return ValidationResult{Errors: errs, Warnings: warns}
	}

	return ValidationResult{
		IsValid:       true,
		Warnings:      warns,
		NormalizedSQL: normalize(tree, sql),
	}
}

// stripQuotedIdentifiers rewrites "ColumnName" to ColumnName. String
// literals use single quotes and are unaffected.
func stripQuotedIdentifiers(sql string) string {
	return quotedIdentifierPattern.ReplaceAllString(sql, "$1")
}
