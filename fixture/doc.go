// Package fixture inserts single rows for tests and removes them again.
//
// Create renders an INSERT for the given column values, runs it on a
// dedicated connection, reads back the generated primary key and commits.
// The returned Record keeps the connection until Close deletes the row:
//
//	rec, err := fixture.Create(ctx, database.Postgres(), args,
//	    "widgets", "widget_id", map[string]any{"name": "bolt", "qty": 5})
//	if err != nil {
//	    return err
//	}
//	defer rec.Close(ctx)
//
// How the key is read back depends on the driver: postgres uses
// INSERT ... RETURNING, mysql and sqlite query the session's last insert id.
// See package dialect.
//
// Values are written into the SQL text as literals, not bound as
// parameters. Only use trusted test data.
//
// Close never fails. A delete that does not succeed, typically because
// another row still references the fixture, is logged at error level and
// reported by Record.TeardownErr. Close fixtures in reverse creation order;
// MustCreate, Component and testutil.Manager do this for you.
//
// Each Record holds one open connection until it is closed.
package fixture
