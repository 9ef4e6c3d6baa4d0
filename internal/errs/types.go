package errs

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// ConflictError is returned when a request for a widget is already in flight.
type ConflictError struct {
	ErrorMessage
}

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// ExternalServiceError wraps a failed upstream call (widget store, assistant,
// Plaid, KMS).
// Reason carries the remote payload's error field when there is one.
type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Status    int
	Reason    string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// LoadError is returned when the widget list cannot be fetched. Cached widgets
// are kept; the caller may retry.
type LoadError struct {
	ErrorMessage
	Err error
}

func (e *LoadError) Unwrap() error   { return e.Err }
func (e *LoadError) Retryable() bool { return true }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewExternalServiceError(service string, status int, reason string, err error) *ExternalServiceError {
	msg := fmt.Sprintf("%s request failed", service)
	if reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, reason)
	} else if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: msg},
		Service:      service,
		Status:       status,
		Reason:       reason,
		Transient:    status == 0 || status >= 500,
		Err:          err,
	}
}

func NewLoadError(err error) *LoadError {
	return &LoadError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("failed to load widgets: %v", err)},
		Err:          err,
	}
}
