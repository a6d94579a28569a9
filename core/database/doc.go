// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL connections (the production
// store shared with the directory's other components) or SQLite (local runs and
// tests) from the application's configuration.
//
// # Connect
//
// Connect opens the connection, applies pool settings and verifies it with a
// bounded ping. Timeouts are embedded in the MySQL DSN so a hung store surfaces as
// an error instead of stalling a sync run.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the migrate command confirm that the
// judicial_entities and sync_runs tables carry every column the engine writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "sync_runs", []string{"sync_id", "status"})
package database
