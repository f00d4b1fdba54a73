package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identifiersWith(columns ...string) queryIdentifiers {
	ids := queryIdentifiers{
		columns:   make(map[string]struct{}),
		relations: map[string]struct{}{"sales": {}},
		aliases:   make(map[string]struct{}),
	}
	for _, c := range columns {
		ids.columns[c] = struct{}{}
	}
	return ids
}

func TestValidateSchema_KnownColumns(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs, warns := v.validateSchema(salesSchema(), identifiersWith("region", "amount"))
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestValidateSchema_CaseInsensitiveLookup(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs, warns := v.validateSchema(salesSchema(), identifiersWith("REGION", "Amount"))
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestValidateSchema_TableNameSkipped(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs, warns := v.validateSchema(salesSchema(), identifiersWith("sales"))
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestValidateSchema_KeywordsAndFunctionsSkipped(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs, warns := v.validateSchema(salesSchema(),
		identifiersWith("count", "interval", "current_timestamp", "desc"))
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestValidateSchema_LiteralsSkipped(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs, warns := v.validateSchema(salesSchema(),
		identifiersWith("42", "3.14", "'north'", `"quoted"`))
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestValidateSchema_ShortAliasHeuristic(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs, warns := v.validateSchema(salesSchema(), identifiersWith("t", "a", "t1", "x9"))
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestValidateSchema_DeclaredAliasSkipped(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	ids := identifiersWith("total")
	ids.aliases["total"] = struct{}{}

	errs, warns := v.validateSchema(salesSchema(), ids)
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestValidateSchema_MisspellingGetsSuggestion(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs, warns := v.validateSchema(customerSchema(), identifiersWith("custmer_id"))
	assert.Empty(t, warns)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrorTypeMissingColumn, errs[0].Type)
	assert.Contains(t, errs[0].SimilarNames, "customer_id")
	assert.Contains(t, errs[0].Suggestion, "Did you mean")
}

func TestValidateSchema_NoSuggestionWarnsOnly(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs, warns := v.validateSchema(salesSchema(), identifiersWith("warehouse_zone"))
	assert.Empty(t, errs)
	require.Len(t, warns, 1)
	assert.Equal(t, ErrorTypeSchema, warns[0].Type)
	assert.Equal(t, SeverityWarning, warns[0].Severity)
}

func TestValidateSchema_UnknownRelation(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	ids := identifiersWith("amount")
	ids.relations = map[string]struct{}{"orders": {}}

	errs, warns := v.validateSchema(salesSchema(), ids)
	assert.Empty(t, warns)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrorTypeMissingTable, errs[0].Type)
	assert.Contains(t, errs[0].Message, "orders")
}

func TestValidateSchema_DeterministicOrder(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	ids := identifiersWith("regoin", "amunt")
	first, _ := v.validateSchema(salesSchema(), ids)
	for i := 0; i < 10; i++ {
		again, _ := v.validateSchema(salesSchema(), ids)
		assert.Equal(t, first, again)
	}
}

func TestLooksLikeAlias(t *testing.T) {
	t.Parallel()

	assert.True(t, looksLikeAlias("t"))
	assert.True(t, looksLikeAlias("A"))
	assert.True(t, looksLikeAlias("t1"))
	assert.False(t, looksLikeAlias("tt"))
	assert.False(t, looksLikeAlias("1t"))
	assert.False(t, looksLikeAlias("total"))
	assert.False(t, looksLikeAlias(""))
}

func TestIsLiteral(t *testing.T) {
	t.Parallel()

	assert.True(t, isLiteral("42"))
	assert.True(t, isLiteral("-1.5"))
	assert.True(t, isLiteral("'text'"))
	assert.True(t, isLiteral(`"text"`))
	assert.False(t, isLiteral("region"))
	assert.False(t, isLiteral("'unterminated"))
}
