package port

import "context"

// AuditEntry represents a single auditable validation decision.
type AuditEntry struct {
	Tool       string
	SQL        string
	Valid      bool
	ErrorCount int
	ErrorType  string // highest-priority error category, empty when valid
	DurationMS int64
}

// ValidationAuditor records validation audit events.
type ValidationAuditor interface {
	Record(ctx context.Context, entry AuditEntry)
	Close() error
}
