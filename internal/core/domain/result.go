package domain

// ErrorType classifies a validation finding.
type ErrorType string

const (
	ErrorTypeSyntax        ErrorType = "syntax"
	ErrorTypeSecurity      ErrorType = "security"
	ErrorTypeMissingColumn ErrorType = "missing_column"
	ErrorTypeMissingTable  ErrorType = "missing_table"
	ErrorTypeSchema        ErrorType = "schema"
)

// Severity distinguishes blocking errors from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is a single finding produced by the validation pipeline.
// Values are immutable once created.
type ValidationError struct {
	Type         ErrorType `json:"error_type"`
	Message      string    `json:"message"`
	Severity     Severity  `json:"severity"`
	Suggestion   string    `json:"suggestion,omitempty"`
	SimilarNames []string  `json:"similar_names,omitempty"`
}

// ValidationResult is the sole output of Validator.Validate.
// NormalizedSQL is set exactly when IsValid is true. Warnings never
// affect validity.
type ValidationResult struct {
	IsValid       bool              `json:"is_valid"`
	Errors        []ValidationError `json:"errors,omitempty"`
	Warnings      []ValidationError `json:"warnings,omitempty"`
	NormalizedSQL string            `json:"normalized_sql,omitempty"`
}

// errorTypePriority orders error categories for feedback to the query
// generator: security findings trump everything, actionable column
// suggestions trump plain syntax failures.
var errorTypePriority = map[ErrorType]int{
	ErrorTypeSecurity:      0,
	ErrorTypeMissingColumn: 1,
	ErrorTypeMissingTable:  2,
	ErrorTypeSyntax:        3,
	ErrorTypeSchema:        4,
}

// PrimaryError returns the highest-priority error to surface upstream,
// or nil if the result is valid.
func (r ValidationResult) PrimaryError() *ValidationError {
	var best *ValidationError
	for i := range r.Errors {
		if best == nil || errorTypePriority[r.Errors[i].Type] < errorTypePriority[best.Type] {
			best = &r.Errors[i]
		}
	}
	return best
}
