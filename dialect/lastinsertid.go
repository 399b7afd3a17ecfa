package dialect

import "context"

// DefaultLastInsertIDQuery is the MySQL session function used when
// LastInsertID.Query is empty.
const DefaultLastInsertIDQuery = "SELECT LAST_INSERT_ID()"

// LastInsertID issues a plain INSERT and then asks the session for the key
// it generated. The follow-up is only meaningful on the connection that ran
// the INSERT and before any other statement.
type LastInsertID struct {
	// Query returns the last generated key in its first column.
	Query string
	// Literal overrides RenderLiteral.
	Literal LiteralFunc
}

var _ Dialect = LastInsertID{}

func (LastInsertID) Name() string { return "last_insert_id" }

func (d LastInsertID) RenderInsert(table, _ string, columns []string, values map[string]any) (string, error) {
	return renderInsert(d.Literal, table, columns, values)
}

func (d LastInsertID) RenderDelete(table, pkColumn string, pk any) (string, error) {
	return renderDelete(d.Literal, table, pkColumn, pk)
}

// FollowUp returns the query run after the INSERT.
func (d LastInsertID) FollowUp() string {
	if d.Query == "" {
		return DefaultLastInsertIDQuery
	}
	return d.Query
}

// ExtractPrimaryKey runs the follow-up query and reads its first column.
func (d LastInsertID) ExtractPrimaryKey(ctx context.Context, cur Cursor) (any, error) {
	if err := cur.Execute(ctx, d.FollowUp()); err != nil {
		return nil, err
	}
	return firstColumn(ctx, cur)
}
