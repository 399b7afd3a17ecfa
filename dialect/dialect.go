package dialect

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/kbukum/dbprime/errors"
	"github.com/kbukum/dbprime/util"
)

// Cursor is the part of a connection a dialect needs to read back a key.
// *database.Handle satisfies it.
type Cursor interface {
	Execute(ctx context.Context, query string) error
	FetchOne(ctx context.Context) ([]any, error)
}

// LiteralFunc renders a Go value as SQL literal text.
type LiteralFunc func(v any) (string, error)

// Dialect renders the fixture statements for one SQL flavour and discovers
// the primary key the database assigned to an inserted row.
type Dialect interface {
	// Name identifies the strategy in logs.
	Name() string
	// RenderInsert renders an INSERT of values in the given column order.
	RenderInsert(table, pkColumn string, columns []string, values map[string]any) (string, error)
	// RenderDelete renders a DELETE of the row whose pkColumn equals pk.
	RenderDelete(table, pkColumn string, pk any) (string, error)
	// ExtractPrimaryKey runs right after the INSERT, on the same cursor,
	// before any other statement.
	ExtractPrimaryKey(ctx context.Context, cur Cursor) (any, error)
}

// SortedColumns returns the keys of values in lexicographic order.
func SortedColumns(values map[string]any) []string {
	return util.SortedKeys(values)
}

func renderInsert(lit LiteralFunc, table string, columns []string, values map[string]any) (string, error) {
	if lit == nil {
		lit = RenderLiteral
	}

	literals := make([]string, len(columns))
	for i, col := range columns {
		v, ok := values[col]
		if !ok {
			return "", apperrors.InvalidInput(col, fmt.Sprintf("no value for column %s", col))
		}
		s, err := lit(v)
		if err != nil {
			return "", apperrors.InvalidInput(col, fmt.Sprintf("column %s: %v", col, err)).WithCause(err)
		}
		literals[i] = s
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(literals, ", ")), nil
}

func renderDelete(lit LiteralFunc, table, pkColumn string, pk any) (string, error) {
	if lit == nil {
		lit = RenderLiteral
	}
	s, err := lit(pk)
	if err != nil {
		return "", apperrors.InvalidInput(pkColumn, fmt.Sprintf("primary key: %v", err)).WithCause(err)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %s", table, pkColumn, s), nil
}

// firstColumn reads the first column of the next row as a primary key.
func firstColumn(ctx context.Context, cur Cursor) (any, error) {
	row, err := cur.FetchOne(ctx)
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeQueryFailed, "Insert returned no primary key.")
	}
	if row[0] == nil {
		return nil, apperrors.New(apperrors.ErrCodeQueryFailed, "Insert returned a NULL primary key.")
	}
	return row[0], nil
}
