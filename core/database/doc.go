// Package database handles database connections and schema inspection.
//
// It wraps GORM and configures either a MySQL or a SQLite connection from the
// application's configuration. SQLite is mainly used for local runs and tests
// (":memory:").
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns for both dialects and MissingColumns
// compares them with the columns a feature expects, so that a stale schema is
// reported at startup rather than on the first query.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "documents", []string{"id", "fields"})
package database
