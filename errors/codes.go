package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction errors. These are fatal: the caller holds no usable record.
const (
	// ErrCodeUnsupportedDialect indicates the driver has no registered dialect.
	ErrCodeUnsupportedDialect ErrorCode = "UNSUPPORTED_DIALECT"
	// ErrCodeEmptyRecord indicates a record was requested with no columns.
	ErrCodeEmptyRecord ErrorCode = "EMPTY_RECORD"
	// ErrCodeConnectionFailed indicates the driver could not open a connection.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeQueryFailed indicates a statement failed to execute, fetch or commit.
	ErrCodeQueryFailed ErrorCode = "QUERY_FAILED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates an argument is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeValidation indicates a configuration struct failed validation.
	ErrCodeValidation ErrorCode = "VALIDATION"
)

// Teardown errors. These are reported but never returned to callers.
const (
	// ErrCodeTeardownFailed indicates the delete or close during disposal failed.
	ErrCodeTeardownFailed ErrorCode = "TEARDOWN_FAILED"
)

var nonFatalCodes = map[ErrorCode]bool{
	ErrCodeTeardownFailed: true,
}

// IsFatalCode returns false for codes that are only ever logged.
func IsFatalCode(code ErrorCode) bool {
	return !nonFatalCodes[code]
}
