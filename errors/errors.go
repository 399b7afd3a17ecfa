package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified error type for fixture operations.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// SQL is the statement that failed, set for QUERY_FAILED errors.
	SQL string `json:"sql,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Sentinels for errors.Is. They match any AppError carrying the same code.
var (
	ErrUnsupportedDialect = &AppError{Code: ErrCodeUnsupportedDialect}
	ErrEmptyRecord        = &AppError{Code: ErrCodeEmptyRecord}
	ErrConnectionFailed   = &AppError{Code: ErrCodeConnectionFailed}
	ErrQueryFailed        = &AppError{Code: ErrCodeQueryFailed}
	ErrInvalidInput       = &AppError{Code: ErrCodeInvalidInput}
	ErrValidation         = &AppError{Code: ErrCodeValidation}
	ErrTeardownFailed     = &AppError{Code: ErrCodeTeardownFailed}
)

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.SQL != "" {
		fmt.Fprintf(&b, " [sql: %s]", e.SQL)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Fatal reports whether the error aborts construction. Teardown errors are not fatal.
func (e *AppError) Fatal() bool { return IsFatalCode(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithSQL records the failing statement and returns the receiver.
func (e *AppError) WithSQL(sql string) *AppError {
	e.SQL = sql
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// UnsupportedDialect creates an error for a driver with no registered dialect.
func UnsupportedDialect(driver string, registered []string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedDialect,
		Message: fmt.Sprintf("No dialect registered for driver %q (registered: %s).",
			driver, strings.Join(registered, ", ")),
		Details: map[string]any{"driver": driver, "registered": registered},
	}
}

// EmptyRecord creates an error for a record with no column values.
func EmptyRecord(table string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyRecord,
		Message: fmt.Sprintf("A fixture record for %s needs at least one column value.", table),
		Details: map[string]any{"table": table},
	}
}

// ConnectionFailed creates an error for a connection the driver could not open.
func ConnectionFailed(driver string) *AppError {
	return &AppError{
		Code:    ErrCodeConnectionFailed,
		Message: fmt.Sprintf("Unable to connect using driver %s.", driver),
		Details: map[string]any{"driver": driver},
	}
}

// QueryFailed creates an error for a statement that failed.
func QueryFailed(sql string) *AppError {
	return &AppError{
		Code:    ErrCodeQueryFailed,
		Message: "Statement failed.",
		SQL:     sql,
	}
}

// TeardownFailed creates an error for a record whose cleanup did not complete.
func TeardownFailed(table string, pk any) *AppError {
	return &AppError{
		Code:    ErrCodeTeardownFailed,
		Message: fmt.Sprintf("Cleanup of %s failed; the row may be left behind.", table),
		Details: map[string]any{"table": table, "pk": pk},
	}
}

// InvalidInput creates an error for an invalid argument.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates an error for a struct that failed validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// --- Helpers ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// SQLOf returns the failing statement attached to err, if any.
func SQLOf(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.SQL
	}
	return ""
}
