package domain

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// normalize renders a validated parse tree in canonical form: keywords
// uppercased, unquoted identifiers lowercased (the parser already folds
// them), comments stripped and whitespace collapsed. Deparsing the tree
// we already hold does all of that in one step. Should deparsing fail,
// the original text with collapsed whitespace is returned so a valid
// result never loses its normalized form.
func normalize(tree *pg_query.ParseResult, original string) string {
	out, err := pg_query.Deparse(tree)
	if err != nil {
		return strings.Join(strings.Fields(original), " ")
	}
	return out
}
