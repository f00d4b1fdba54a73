package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sqlward/sqlward/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileAuditor_CreatesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	fa, err := NewFileAuditor(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, fa.Close()) }()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewFileAuditor_InvalidPath(t *testing.T) {
	t.Parallel()
	_, err := NewFileAuditor("/nonexistent/dir/audit.jsonl")
	require.Error(t, err)
}

func TestFileAuditor_Record_WritesNDJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	fa, err := NewFileAuditor(path)
	require.NoError(t, err)

	fa.Record(context.Background(), port.AuditEntry{
		Tool:       "validate_sql",
		SQL:        "SELECT region FROM sales",
		Valid:      true,
		DurationMS: 3,
	})
	fa.Record(context.Background(), port.AuditEntry{
		Tool:       "validate_sql",
		SQL:        "DROP TABLE sales",
		Valid:      false,
		ErrorCount: 1,
		ErrorType:  "security",
		DurationMS: 1,
	})
	require.NoError(t, fa.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		entries = append(entries, m)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, entries, 2)

	assert.Equal(t, "SELECT region FROM sales", entries[0]["sql"])
	assert.Equal(t, true, entries[0]["valid"])
	assert.NotContains(t, entries[0], "error_type")
	assert.NotEmpty(t, entries[0]["ts"])

	assert.Equal(t, false, entries[1]["valid"])
	assert.Equal(t, "security", entries[1]["error_type"])
	assert.Equal(t, float64(1), entries[1]["error_count"])
}

func TestFileAuditor_Append(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	fa, err := NewFileAuditor(path)
	require.NoError(t, err)
	fa.Record(context.Background(), port.AuditEntry{SQL: "SELECT 1", Valid: true})
	require.NoError(t, fa.Close())

	// Reopening appends instead of truncating.
	fa, err = NewFileAuditor(path)
	require.NoError(t, err)
	fa.Record(context.Background(), port.AuditEntry{SQL: "SELECT 2", Valid: true})
	require.NoError(t, fa.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SELECT 1")
	assert.Contains(t, string(data), "SELECT 2")
}

func TestFileAuditor_ConcurrentRecords(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	fa, err := NewFileAuditor(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fa.Record(context.Background(), port.AuditEntry{
				SQL:   fmt.Sprintf("SELECT %d", i),
				Valid: true,
			})
		}(i)
	}
	wg.Wait()
	require.NoError(t, fa.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m), "every line must be valid JSON")
		lines++
	}
	assert.Equal(t, 10, lines)
}

func TestNoopAuditor(t *testing.T) {
	t.Parallel()
	var a NoopAuditor
	a.Record(context.Background(), port.AuditEntry{SQL: "SELECT 1"})
	assert.NoError(t, a.Close())
}
