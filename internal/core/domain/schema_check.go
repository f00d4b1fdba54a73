package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// validateSchema classifies every extracted identifier against the
// schema. Known noise (the table itself, keywords and built-in
// functions, literals, declared aliases, alias-shaped names) is skipped;
// the remainder must be schema columns. An unknown identifier with a
// plausible correction becomes a missing_column error; one without any
// becomes a schema warning, because without an actionable alternative
// the confidence that it is wrong is low.
func (v *Validator) validateSchema(schema SchemaContext, ids queryIdentifiers) (errs, warns []ValidationError) {
	for _, rel := range sortedKeys(ids.relations) {
		if strings.EqualFold(rel, schema.TableName) {
			continue
		}
		errs = append(errs, ValidationError{
			Type:       ErrorTypeMissingTable,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("table %q does not exist", rel),
			Suggestion: fmt.Sprintf("query the %q table instead", schema.TableName),
		})
	}

	for _, id := range sortedKeys(ids.columns) {
		if strings.EqualFold(id, schema.TableName) {
			continue
		}
		if isKeywordOrFunction(id) {
			continue
		}
		if isLiteral(id) {
			continue
		}
		if _, declared := ids.aliases[strings.ToLower(id)]; declared {
			continue
		}
		// Short-alias heuristic: one letter, or one letter plus one
		// digit, is presumed to be a table alias (t, a, t1). Known
		// limitation: a genuine one-letter column is silently skipped.
		if looksLikeAlias(id) {
			continue
		}
		if schema.HasColumn(id) {
			continue
		}

		if similar := v.similarColumns(id, schema); len(similar) > 0 {
			errs = append(errs, ValidationError{
				Type:     ErrorTypeMissingColumn,
				Severity: SeverityError,
				Message: fmt.Sprintf("column %q does not exist in table %q",
					id, schema.TableName),
				Suggestion:   fmt.Sprintf("Did you mean: %s?", strings.Join(similar, ", ")),
				SimilarNames: similar,
			})
			continue
		}

		warns = append(warns, ValidationError{
			Type:     ErrorTypeSchema,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("identifier %q could not be matched to any column of table %q",
				id, schema.TableName),
		})
	}

	return errs, warns
}

// isLiteral reports whether the token is a numeric literal or a quoted
// string rather than an identifier.
func isLiteral(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return true
		}
	}
	return false
}

func looksLikeAlias(s string) bool {
	switch len(s) {
	case 1:
		return isAlpha(s[0])
	case 2:
		return isAlpha(s[0]) && s[1] >= '0' && s[1] <= '9'
	default:
		return false
	}
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
