package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a domain error for malformed caller input.
// Always recoverable; the transport renders it as a corrective prompt.
func NewValidationError(message string) *DomainError {
	return &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

// NewPersistenceError wraps a storage failure. The cause stays reachable
// through errors.Unwrap for logging; the message is what users may see.
func NewPersistenceError(message string, cause error) *DomainError {
	return &DomainError{
		Code:    "PERSISTENCE_ERROR",
		Message: message,
		cause:   cause,
	}
}

// Common domain errors
var (
	// ErrNotFound signals absence. Absence is a normal optional result,
	// not a failure: callers branch on it and never surface it to users.
	ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")

	// ErrEmptyCart signals a checkout attempt with no cart contents.
	ErrEmptyCart = NewDomainError("EMPTY_CART", "Cart is empty, nothing to check out")

	// ErrForbidden signals a privileged operation attempted by a
	// non-privileged actor.
	ErrForbidden = NewDomainError("FORBIDDEN", "Access to this operation is denied")
)
