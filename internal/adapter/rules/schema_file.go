package rules

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sqlward/sqlward/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// FileSchemaProvider serves a SchemaContext loaded once from a YAML
// file. It is the database-free alternative to the postgres provider.
type FileSchemaProvider struct {
	schema domain.SchemaContext
}

// NewFileSchemaProvider loads and validates the schema file at path.
func NewFileSchemaProvider(path string) (*FileSchemaProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var schema domain.SchemaContext
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing schema YAML: %w", err)
	}

	if err := validateSchema(schema); err != nil {
		return nil, fmt.Errorf("validating schema file: %w", err)
	}

	return &FileSchemaProvider{schema: schema}, nil
}

func validateSchema(schema domain.SchemaContext) error {
	if schema.TableName == "" {
		return fmt.Errorf("table is required")
	}
	if len(schema.Columns) == 0 {
		return fmt.Errorf("at least one column is required")
	}

	seen := make(map[string]struct{}, len(schema.Columns))
	for i, col := range schema.Columns {
		if col.Name == "" {
			return fmt.Errorf("columns[%d].name is empty", i)
		}
		lower := strings.ToLower(col.Name)
		if _, dup := seen[lower]; dup {
			return fmt.Errorf("duplicate column name %q (names are case-insensitive)", col.Name)
		}
		seen[lower] = struct{}{}
	}
	return nil
}

func (p *FileSchemaProvider) Schema(_ context.Context) (domain.SchemaContext, error) {
	return p.schema, nil
}
