package domain

import (
	"fmt"
	"strings"
)

// checkSecurity scans the raw query text for disallowed statement kinds
// and multi-statement injection. It is the authoritative first stage:
// any finding here stops the pipeline before syntax or schema analysis.
func (v *Validator) checkSecurity(sql string) []ValidationError {
	var errs []ValidationError

	// Length cap comes before everything else so pathological inputs
	// never reach the keyword scan or the parser.
	if len(sql) > v.cfg.MaxQueryLength {
		return []ValidationError{{
			Type:     ErrorTypeSecurity,
			Severity: SeverityError,
			Message: fmt.Sprintf("query length %d exceeds the maximum of %d characters",
				len(sql), v.cfg.MaxQueryLength),
			Suggestion: "shorten the query or raise max_query_length",
		}}
	}

	for i, re := range v.keywordPatterns {
		if re.MatchString(sql) {
			errs = append(errs, ValidationError{
				Type:     ErrorTypeSecurity,
				Severity: SeverityError,
				Message: fmt.Sprintf("query contains disallowed keyword %q",
					v.cfg.DangerousKeywords[i]),
				Suggestion: "only read-only SELECT queries are permitted",
			})
		}
	}

	if n := countStatements(sql); n > 1 {
		errs = append(errs, ValidationError{
			Type:       ErrorTypeSecurity,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("query contains %d statements; only a single statement is allowed", n),
			Suggestion: "remove everything after the first semicolon",
		})
	}

	return errs
}

// countStatements splits on semicolons and counts the non-empty parts.
// A single statement with one terminating semicolon counts as one.
func countStatements(sql string) int {
	n := 0
	for _, part := range strings.Split(sql, ";") {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}
