package domain

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// checkSyntax parses the query and verifies statement shape. The
// character-level balance checks run independently of the parser and
// are additive: an unbalanced query reports both the balance mismatch
// and the parse failure. On success the parse tree is returned for the
// schema stage to reuse.
func (v *Validator) checkSyntax(sql string) (*pg_query.ParseResult, []ValidationError) {
	errs := checkBalance(sql)

	tree, err := pg_query.Parse(sql)
	if err != nil {
		errs = append(errs, ValidationError{
			Type:       ErrorTypeSyntax,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("failed to parse SQL query: %v", err),
			Suggestion: "check the query structure near the reported position",
		})
		return nil, errs
	}

	if len(tree.Stmts) == 0 || tree.Stmts[0].Stmt == nil {
		errs = append(errs, ValidationError{
			Type:     ErrorTypeSyntax,
			Severity: SeverityError,
			Message:  "query is empty",
		})
		return nil, errs
	}

	if _, ok := tree.Stmts[0].Stmt.Node.(*pg_query.Node_SelectStmt); !ok {
		errs = append(errs, ValidationError{
			Type:       ErrorTypeSyntax,
			Severity:   SeverityError,
			Message:    "query must start with SELECT",
			Suggestion: "only read-only SELECT queries are permitted",
		})
		return nil, errs
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return tree, nil
}

// checkBalance performs the two structural balance checks on the raw
// text: parenthesis pairing and quote pairing. Both may fire in the
// same call.
func checkBalance(sql string) []ValidationError {
	var errs []ValidationError

	open := strings.Count(sql, "(")
	closed := strings.Count(sql, ")")
	switch {
	case open > closed:
		errs = append(errs, ValidationError{
			Type:     ErrorTypeSyntax,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unbalanced parentheses: %d closing parenthesis(es) missing", open-closed),
		})
	case closed > open:
		errs = append(errs, ValidationError{
			Type:     ErrorTypeSyntax,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unbalanced parentheses: %d opening parenthesis(es) missing", closed-open),
		})
	}

	if countUnescaped(sql, '\'')%2 != 0 {
		errs = append(errs, ValidationError{
			Type:     ErrorTypeSyntax,
			Severity: SeverityError,
			Message:  "unmatched single quote",
		})
	}
	if countUnescaped(sql, '"')%2 != 0 {
		errs = append(errs, ValidationError{
			Type:     ErrorTypeSyntax,
			Severity: SeverityError,
			Message:  "unmatched double quote",
		})
	}

	return errs
}

// countUnescaped counts occurrences of q not preceded by a backslash.
func countUnescaped(sql string, q byte) int {
	n := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == q && (i == 0 || sql[i-1] != '\\') {
			n++
		}
	}
	return n
}
