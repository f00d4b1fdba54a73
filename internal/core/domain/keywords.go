package domain

import "strings"

// sqlKeywords is the allow-list of clause and operator keywords an
// extracted identifier may legitimately collide with. It is consulted
// before any schema lookup: a false negative here surfaces directly as
// a bogus missing-column report, so the set is maintained explicitly
// rather than inferred.
var sqlKeywords = makeSet(
	"SELECT", "FROM", "WHERE", "GROUP", "BY", "HAVING", "ORDER",
	"LIMIT", "OFFSET", "FETCH", "FIRST", "NEXT", "ONLY", "TIES",
	"AS", "ON", "AND", "OR", "NOT", "IN", "IS", "NULL", "LIKE",
	"ILIKE", "SIMILAR", "BETWEEN", "EXISTS", "ANY", "ALL", "SOME",
	"CASE", "WHEN", "THEN", "ELSE", "END",
	"JOIN", "INNER", "LEFT", "RIGHT", "FULL", "OUTER", "CROSS",
	"NATURAL", "USING", "LATERAL",
	"UNION", "INTERSECT", "EXCEPT", "DISTINCT",
	"ASC", "DESC", "NULLS", "LAST",
	"WITH", "RECURSIVE",
	"OVER", "PARTITION", "WINDOW", "FILTER", "WITHIN",
	"ROWS", "RANGE", "GROUPS", "PRECEDING", "FOLLOWING",
	"UNBOUNDED", "CURRENT", "ROW",
	"CAST", "INTERVAL", "EXTRACT", "COLLATE", "ESCAPE",
	"TRUE", "FALSE", "UNKNOWN",
)

// sqlFunctions is the allow-list of built-in function names: standard
// aggregates, string/math/date helpers, and window functions.
var sqlFunctions = makeSet(
	// Aggregates.
	"COUNT", "SUM", "AVG", "MIN", "MAX",
	"STRING_AGG", "ARRAY_AGG", "BOOL_AND", "BOOL_OR",
	"STDDEV", "STDDEV_POP", "STDDEV_SAMP",
	"VARIANCE", "VAR_POP", "VAR_SAMP",
	// Strings.
	"UPPER", "LOWER", "INITCAP", "LENGTH", "CHAR_LENGTH",
	"CHARACTER_LENGTH", "TRIM", "LTRIM", "RTRIM", "LPAD", "RPAD",
	"SUBSTRING", "SUBSTR", "REPLACE", "CONCAT", "CONCAT_WS",
	"POSITION", "SPLIT_PART", "REVERSE", "MD5",
	// Math.
	"ABS", "ROUND", "FLOOR", "CEIL", "CEILING", "TRUNC", "SIGN",
	"MOD", "POWER", "SQRT", "EXP", "LN", "LOG", "RANDOM",
	// Null handling and comparisons.
	"COALESCE", "NULLIF", "GREATEST", "LEAST",
	// Dates and times.
	"NOW", "AGE", "CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP",
	"LOCALTIME", "LOCALTIMESTAMP", "DATE_TRUNC", "DATE_PART",
	"TO_CHAR", "TO_DATE", "TO_NUMBER", "TO_TIMESTAMP", "MAKE_DATE",
	// Window functions.
	"ROW_NUMBER", "RANK", "DENSE_RANK", "PERCENT_RANK", "NTILE",
	"CUME_DIST", "LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE", "NTH_VALUE",
)

func makeSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// isKeywordOrFunction reports whether name is a recognized SQL keyword
// or built-in function, ignoring case.
func isKeywordOrFunction(name string) bool {
	upper := strings.ToUpper(name)
	if _, ok := sqlKeywords[upper]; ok {
		return true
	}
	_, ok := sqlFunctions[upper]
	return ok
}
