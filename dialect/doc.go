// Package dialect renders fixture INSERT and DELETE statements and reads
// back generated primary keys.
//
// Two strategies cover the common engines:
//
//   - Returning appends "RETURNING <pk>" and reads the key from the insert's
//     own result row (PostgreSQL, SQLite).
//   - LastInsertID runs a session follow-up such as SELECT LAST_INSERT_ID()
//     on the same connection (MySQL).
//
// A Registry maps driver identities to strategies:
//
//	reg := dialect.NewDefaultRegistry()
//	reg.Register("cockroach", dialect.Returning{})
//
// Values are interpolated into SQL text through RenderLiteral without
// escaping; see its documentation.
package dialect
