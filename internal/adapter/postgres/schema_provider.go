package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sqlward/sqlward/internal/core/domain"
)

const queryColumns = `
	SELECT column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
	ORDER BY ordinal_position`

// SchemaProvider reads the target table's columns from the database on
// every call, so schema migrations are picked up without a restart.
type SchemaProvider struct {
	pool      *pgxpool.Pool
	schema    string
	tableName string
}

// NewSchemaProvider creates a provider for one table. An empty schema
// defaults to "public".
func NewSchemaProvider(pool *pgxpool.Pool, schema, tableName string) *SchemaProvider {
	if schema == "" {
		schema = "public"
	}
	return &SchemaProvider{pool: pool, schema: schema, tableName: tableName}
}

func (p *SchemaProvider) Schema(ctx context.Context) (domain.SchemaContext, error) {
	rows, err := p.pool.Query(ctx, queryColumns, p.schema, p.tableName)
	if err != nil {
		return domain.SchemaContext{}, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var cols []domain.ColumnInfo
	for rows.Next() {
		var col domain.ColumnInfo
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return domain.SchemaContext{}, fmt.Errorf("scanning column: %w", err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return domain.SchemaContext{}, fmt.Errorf("iterating columns: %w", err)
	}

	if len(cols) == 0 {
		return domain.SchemaContext{}, fmt.Errorf("table %q not found in schema %q", p.tableName, p.schema)
	}

	return domain.SchemaContext{TableName: p.tableName, Columns: cols}, nil
}
