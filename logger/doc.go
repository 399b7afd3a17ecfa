// Package logger provides structured logging for dbprime using zerolog.
//
// Loggers are component-scoped and take structured fields as maps, so
// fixture lifecycle events carry the table, dialect, primary key and SQL
// that produced them.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("fixture")
//	log.Warn("row left behind", logger.Fields(logger.FieldTable, "widgets", logger.FieldPK, 42))
package logger
