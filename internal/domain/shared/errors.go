package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so a
// specific message built with NewDomainError still matches the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	// ErrTypeMismatch is returned when a value does not have the shape an
	// operation requires, e.g. incrementing a non-numeric setting.
	ErrTypeMismatch = NewDomainError("TYPE_MISMATCH", "Value has an unexpected type")
)
