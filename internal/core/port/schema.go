package port

import (
	"context"

	"github.com/sqlward/sqlward/internal/core/domain"
)

// SchemaProvider supplies the SchemaContext of the single queryable
// table. Implementations may read a live database or a static file;
// the validator itself never caches what they return.
type SchemaProvider interface {
	Schema(ctx context.Context) (domain.SchemaContext, error)
}
