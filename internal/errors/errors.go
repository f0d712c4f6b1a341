// Package errors provides centralized error definitions and error handling utilities
// for posthub. It defines the sentinel errors, the typed errors raised by the
// delivery, consumption and broadcast paths, and classification helpers used by
// the command layer to pick exit codes and diagnostics.
//
// # Error Types
//
// Domain errors, one per failure surface:
//   - ConfigurationError: the mailbox root or the roster could not be read
//   - DeliveryError: staging write, flush or publish rename failed
//   - DispatchError: a broadcast delivered to nobody
//   - ConsumptionError: the unread directory could not be listed
//
// Semantic errors:
//   - ValidationError: invalid input (bad user name, empty message)
//
// # Usage
//
//	err := errors.NewDeliveryError("publish failed", cause).
//	    WithUser("alice").WithStage(errors.StagePublish)
//
//	if errors.Is(err, errors.ErrMailboxNotFound) { ... }
//
//	var de *errors.DeliveryError
//	if errors.As(err, &de) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Mailbox-related sentinel errors
var (
	// ErrMailboxNotFound indicates that one of the tmp/new/cur directories is missing.
	ErrMailboxNotFound = New("mailbox directories not found")
	// ErrIdentifierExhausted indicates that every candidate message name was taken.
	ErrIdentifierExhausted = New("message identifier space exhausted")
	// ErrInvalidUser indicates a user name that cannot name a mailbox.
	ErrInvalidUser = New("invalid user name")
)

// Roster-related sentinel errors
var (
	// ErrRosterUnreadable indicates that the roster file could not be opened or read.
	ErrRosterUnreadable = New("roster unreadable")
	// ErrRosterEmpty indicates that the roster names no users.
	ErrRosterEmpty = New("roster is empty")
	// ErrNoDeliveries indicates that a broadcast delivered to nobody.
	ErrNoDeliveries = New("no deliveries succeeded")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrOperationFailed indicates a general operation failure.
	ErrOperationFailed = New("operation failed")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// PosthubError is the base interface for all posthub errors.
type PosthubError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the operation may succeed when the caller
	// runs it again.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ConfigurationError represents an unreadable mailbox root or roster.
//
// Example:
//
//	err := errors.NewConfigurationError("open roster", errors.ErrRosterUnreadable).
//	    WithPath("/var/posthub/users.txt")
type ConfigurationError struct {
	baseError
	Path string
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithPath records the offending path.
func (e *ConfigurationError) WithPath(path string) *ConfigurationError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *ConfigurationError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("configuration error", parts)
}

// Is checks if this error matches the target.
func (e *ConfigurationError) Is(target error) bool {
	if _, ok := target.(*ConfigurationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DeliveryStage names the step of a delivery that failed.
type DeliveryStage string

const (
	StageGenerate DeliveryStage = "generate"
	StageStage    DeliveryStage = "stage"
	StageWrite    DeliveryStage = "write"
	StageSync     DeliveryStage = "sync"
	StagePublish  DeliveryStage = "publish"
)

// DeliveryError represents a failed delivery into one mailbox. The message
// is never visible in the unread set when this error is returned, so the
// caller may retry.
//
// Example:
//
//	err := errors.NewDeliveryError("rename into new", cause).
//	    WithUser("alice").WithMessageID("6712AB01.MSG").WithStage(errors.StagePublish)
type DeliveryError struct {
	baseError
	User      string
	MessageID string
	Stage     DeliveryStage
}

// NewDeliveryError creates a new DeliveryError.
func NewDeliveryError(message string, cause error) *DeliveryError {
	return &DeliveryError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithUser adds the recipient to the error context.
func (e *DeliveryError) WithUser(user string) *DeliveryError {
	e.User = user
	return e
}

// WithMessageID adds the message name to the error context.
func (e *DeliveryError) WithMessageID(id string) *DeliveryError {
	e.MessageID = id
	return e
}

// WithStage records which delivery step failed.
func (e *DeliveryError) WithStage(stage DeliveryStage) *DeliveryError {
	e.Stage = stage
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *DeliveryError) WithRetryable(r bool) *DeliveryError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *DeliveryError) Error() string {
	var parts []string
	if e.User != "" {
		parts = append(parts, fmt.Sprintf("user=%s", e.User))
	}
	if e.MessageID != "" {
		parts = append(parts, fmt.Sprintf("message=%s", e.MessageID))
	}
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", e.Stage))
	}
	return e.format("delivery error", parts)
}

// Is checks if this error matches the target.
func (e *DeliveryError) Is(target error) bool {
	if _, ok := target.(*DeliveryError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DispatchError is returned when a broadcast delivered nothing.
type DispatchError struct {
	baseError
	Attempted int
	Delivered int
}

// NewDispatchError creates a new DispatchError.
func NewDispatchError(message string, cause error) *DispatchError {
	return &DispatchError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithCounts records how many deliveries were attempted and how many succeeded.
func (e *DispatchError) WithCounts(attempted, delivered int) *DispatchError {
	e.Attempted = attempted
	e.Delivered = delivered
	return e
}

// Error returns the formatted error message.
func (e *DispatchError) Error() string {
	parts := []string{
		fmt.Sprintf("attempted=%d", e.Attempted),
		fmt.Sprintf("delivered=%d", e.Delivered),
	}
	return e.format("dispatch error", parts)
}

// Is checks if this error matches the target.
func (e *DispatchError) Is(target error) bool {
	if _, ok := target.(*DispatchError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ConsumptionError is returned when a user's unread directory cannot be listed.
// Failures on individual messages never surface as errors.
type ConsumptionError struct {
	baseError
	User string
	Dir  string
}

// NewConsumptionError creates a new ConsumptionError.
func NewConsumptionError(message string, cause error) *ConsumptionError {
	return &ConsumptionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithUser adds the mailbox owner to the error context.
func (e *ConsumptionError) WithUser(user string) *ConsumptionError {
	e.User = user
	return e
}

// WithDir adds the directory that could not be listed.
func (e *ConsumptionError) WithDir(dir string) *ConsumptionError {
	e.Dir = dir
	return e
}

// Error returns the formatted error message.
func (e *ConsumptionError) Error() string {
	var parts []string
	if e.User != "" {
		parts = append(parts, fmt.Sprintf("user=%s", e.User))
	}
	if e.Dir != "" {
		parts = append(parts, fmt.Sprintf("dir=%s", e.Dir))
	}
	return e.format("consumption error", parts)
}

// Is checks if this error matches the target.
func (e *ConsumptionError) Is(target error) bool {
	if _, ok := target.(*ConsumptionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("user name contains a path separator").
//	    WithField("user").WithValue("../alice")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a condition that may clear
// when the operation is run again (a failed delivery, an unlistable inbox).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var phErr PosthubError
	if As(err, &phErr) {
		return phErr.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var phErr PosthubError
	if As(err, &phErr) {
		return phErr.IsUserFacing()
	}

	var validation *ValidationError
	return As(err, &validation)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement PosthubError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var phErr PosthubError
	if As(err, &phErr) {
		return phErr.Severity()
	}
	return SeverityError
}

// IsUsageError reports whether err stems from bad invocation input rather
// than from the filesystem.
func IsUsageError(err error) bool {
	if err == nil {
		return false
	}
	var validation *ValidationError
	return As(err, &validation)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
