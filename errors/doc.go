// Package errors provides the error taxonomy for fixture records.
//
// Every failure surfaced by the fixture, dialect and database packages is an
// *AppError carrying a machine-readable ErrorCode. Sentinels such as
// ErrEmptyRecord match any AppError with the same code, so callers can use
// the standard library:
//
//	if errors.Is(err, apperrors.ErrUnsupportedDialect) { ... }
//
// QUERY_FAILED errors carry the SQL text that failed in AppError.SQL.
package errors
