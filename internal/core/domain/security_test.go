package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSecurity_CleanSelect(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs := v.checkSecurity("SELECT region FROM sales")
	assert.Empty(t, errs)
}

func TestCheckSecurity_KeywordCaseInsensitive(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs := v.checkSecurity("select * from sales; drop table sales")
	require.NotEmpty(t, errs)

	var messages []string
	for _, e := range errs {
		assert.Equal(t, ErrorTypeSecurity, e.Type)
		assert.Equal(t, SeverityError, e.Severity)
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages[0], "DROP")
}

func TestCheckSecurity_WholeWordBoundary(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	// "created_at" and "updated_at" contain CREATE/UPDATE as substrings
	// but not as whole words.
	errs := v.checkSecurity("SELECT created_at, updated_at FROM sales")
	assert.Empty(t, errs)
}

func TestCheckSecurity_MultiStatement(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs := v.checkSecurity("SELECT 1; SELECT 2")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrorTypeSecurity, errs[0].Type)
	assert.Contains(t, errs[0].Message, "2 statements")
}

func TestCheckSecurity_TrailingSemicolon(t *testing.T) {
	t.Parallel()
	v := NewValidator(DefaultConfig())

	errs := v.checkSecurity("SELECT 1;")
	assert.Empty(t, errs)
}

func TestCheckSecurity_LengthCapBeforeKeywordScan(t *testing.T) {
	t.Parallel()
	v := NewValidator(Config{MaxQueryLength: 10})

	// Over-length AND containing DROP: only the length error may appear.
	errs := v.checkSecurity("DROP TABLE sales cascade")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "exceeds")
}

func TestCheckSecurity_CustomKeywordSet(t *testing.T) {
	t.Parallel()
	v := NewValidator(Config{DangerousKeywords: []string{"MERGE"}})

	errs := v.checkSecurity("MERGE INTO sales USING updates ON true")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "MERGE")

	// The default set is replaced, not extended.
	assert.Empty(t, v.checkSecurity("SELECT 'DROP me not' FROM sales WHERE note = 'x'"))
}

func TestCountStatements(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, countStatements("  "))
	assert.Equal(t, 1, countStatements("SELECT 1"))
	assert.Equal(t, 1, countStatements("SELECT 1;"))
	assert.Equal(t, 2, countStatements("SELECT 1; SELECT 2;"))
	assert.Equal(t, 3, countStatements("a;b;c"))
}
