// Package database is the connection adapter used by fixtures.
//
// A Driver opens one exclusively owned Conn per call; Open wraps it in a
// Handle that reports failures as AppErrors (CONNECTION_FAILED on open,
// QUERY_FAILED with the statement text afterwards) and closes it once.
//
// The bundled drivers run on GORM with the pool pinned to a single
// connection, so a statement and its follow-up (SELECT LAST_INSERT_ID())
// share one session:
//
//	drv := database.Postgres(database.WithLogger(log))
//	h, err := database.Open(ctx, drv, database.Args{
//	    "host": "localhost", "user": "app", "database": "app_test",
//	}, log)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
// Statements are executed in a transaction that starts with the first
// Execute and ends with Commit; Close rolls back whatever was not committed.
package database
