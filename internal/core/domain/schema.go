package domain

import "strings"

// ColumnInfo describes one column of the queryable table.
type ColumnInfo struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// SchemaContext is the caller-supplied description of the single
// queryable table. It is never mutated by the validator; column names
// are expected to be unique under case-insensitive comparison.
type SchemaContext struct {
	TableName string       `json:"table_name" yaml:"table"`
	Columns   []ColumnInfo `json:"columns" yaml:"columns"`
}

// HasColumn reports whether name matches a schema column, ignoring case.
func (s SchemaContext) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// ColumnNames returns the column names in declaration order.
func (s SchemaContext) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}
