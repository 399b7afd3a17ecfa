package dialect

import "context"

// Returning reads the key from a RETURNING clause on the INSERT itself, as
// PostgreSQL (and SQLite 3.35+) support. No second statement is issued.
type Returning struct {
	// Literal overrides RenderLiteral.
	Literal LiteralFunc
}

var _ Dialect = Returning{}

func (Returning) Name() string { return "returning" }

func (d Returning) RenderInsert(table, pkColumn string, columns []string, values map[string]any) (string, error) {
	stmt, err := renderInsert(d.Literal, table, columns, values)
	if err != nil {
		return "", err
	}
	return stmt + " RETURNING " + pkColumn, nil
}

func (d Returning) RenderDelete(table, pkColumn string, pk any) (string, error) {
	return renderDelete(d.Literal, table, pkColumn, pk)
}

// ExtractPrimaryKey reads the first column of the row the INSERT returned.
func (Returning) ExtractPrimaryKey(ctx context.Context, cur Cursor) (any, error) {
	return firstColumn(ctx, cur)
}
