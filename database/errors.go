package database

import (
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Failure kinds reported by Classify.
const (
	KindForeignKey = "foreign_key"
	KindConnection = "connection"
	KindOther      = "other"
)

const (
	pgForeignKeyViolation = "23503"
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
)

// IsConnectionError checks if a database error means the connection itself
// is unusable.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	patterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"connection closed",
		"connection lost",
		"driver: bad connection",
		"invalid connection",
		"database is closed",
	}
	for _, p := range patterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// IsForeignKeyViolation reports whether err is a foreign key constraint
// failure, typically a DELETE of a row another row still references.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlRowIsReferenced || myErr.Number == mysqlNoReferencedRow
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}

	return false
}

// Classify names the kind of a driver failure for logs.
func Classify(err error) string {
	switch {
	case IsForeignKeyViolation(err):
		return KindForeignKey
	case IsConnectionError(err):
		return KindConnection
	default:
		return KindOther
	}
}
