// Package database provides SQLite connection management and schema migrations
// for Home Electronics Core.
//
// # Features
//
//   - WAL mode for concurrent reads during writes
//   - Busy timeout handling to avoid "database is locked" errors
//   - Embedded migrations applied at startup, tracked in schema_migrations
//   - Health checks for monitoring
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{
//	    Path:        "./data/homecore.db",
//	    WALMode:     true,
//	    BusyTimeout: 5,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// SQLite supports only one writer at a time, so the connection pool is
// limited to a single connection. Repositories must keep transactions short.
package database
