package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskhub/internal/store"
)

// Error handling principles:
//  1. Invalid input is returned as the *domain.ValidationError produced by
//     validation, unchanged, before any mutation happens.
//  2. Missing entities are reported as *NotFoundError and uniqueness
//     violations as *DuplicateError; both unwrap to the store sentinel, so
//     errors.Is(err, store.ErrNotFound) and store.IsDuplicateError work.
//  3. Anything unexpected from a store is wrapped in *ServiceError, which
//     matches ErrInternal.
//  4. The API layer maps these kinds to HTTP status codes.
var (
	// ErrInternal indicates an unexpected failure while accessing storage.
	// API layer should map this to HTTP 500 Internal Server Error.
	ErrInternal = errors.New("internal failure")
)

// NotFoundError reports a lookup that found nothing, carrying the key used.
type NotFoundError struct {
	Entity string // "user" or "task"
	Key    string // Lookup key, e.g. "id", "username", "email"
	Value  any    // The value that was looked up
	Err    error  // store.ErrUserNotFound or store.ErrTaskNotFound
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", e.Entity, e.Key, e.Value)
}

// Unwrap returns the store sentinel.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// NewUserNotFoundError reports a user missing under key=value.
func NewUserNotFoundError(key string, value any) *NotFoundError {
	return &NotFoundError{Entity: "user", Key: key, Value: value, Err: store.ErrUserNotFound}
}

// NewTaskNotFoundError reports a task missing under id.
func NewTaskNotFoundError(id int64) *NotFoundError {
	return &NotFoundError{Entity: "task", Key: "id", Value: id, Err: store.ErrTaskNotFound}
}

// DuplicateError reports a uniqueness violation, carrying the offending value.
type DuplicateError struct {
	Field string // "email" or "username"
	Value string
	Err   error // store.ErrEmailExists or store.ErrUsernameExists
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("user with %s '%s' already exists", e.Field, e.Value)
}

// Unwrap returns the store sentinel.
func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// NewDuplicateEmailError reports that email is already registered.
func NewDuplicateEmailError(email string) *DuplicateError {
	return &DuplicateError{Field: "email", Value: email, Err: store.ErrEmailExists}
}

// NewDuplicateUsernameError reports that username is already taken.
func NewDuplicateUsernameError(username string) *DuplicateError {
	return &DuplicateError{Field: "username", Value: username, Err: store.ErrUsernameExists}
}

// ServiceError wraps an unexpected failure with the operation that hit it.
type ServiceError struct {
	Service   string // "user" or "task"
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is reports every ServiceError as an ErrInternal.
func (e *ServiceError) Is(target error) bool {
	return target == ErrInternal
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
