package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // Register the CGO-free sqlite driver

	"github.com/belphemur/day-planner/internal/logging"
	"github.com/rs/zerolog"
)

//go:embed migrations
var migrationsFS embed.FS

// DB manages the database connection
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
	dbPath string
}

// New creates a new database connection using the provided options.
// URI-level settings (mode, cache, immutable, txlock) travel in the DSN;
// everything else is applied with explicit PRAGMA commands once the
// connection is established.
func New(opts SQLiteOptions) (*DB, error) {
	connStr := opts.buildConnectionString()
	logger := logging.GetLogger("database").With().Str("db_path", opts.Path).Logger()
	logger.Info().Str("connection_string", connStr).Msg("Opening database connection")
	conn, err := sql.Open("sqlite", connStr)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open database")
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = applyPragmas(conn, opts, logger); err != nil {
		conn.Close()
		return nil, err
	}

	// Ping the database to ensure connection and PRAGMAs are valid
	if err = conn.Ping(); err != nil {
		logger.Error().Err(err).Msg("Failed to ping database after open and applying PRAGMAs")
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info().Msg("Database connection opened and configured successfully")

	return &DB{conn: conn, logger: logger, dbPath: opts.Path}, nil
}

// pragmaConfig defines how a PRAGMA should be handled
type pragmaConfig struct {
	name        string                             // Name of the PRAGMA
	value       interface{}                        // Value to set
	allowZero   bool                               // Whether zero/false values should be applied
	formatValue func(v interface{}) (string, bool) // Custom value formatter, returns formatted value and whether to skip
}

// applyPragmas executes PRAGMA commands based on SQLiteOptions after the
// connection is opened. It attempts to apply all specified PRAGMAs and
// returns a combined error if one or more applications fail.
func applyPragmas(conn *sql.DB, opts SQLiteOptions, logger zerolog.Logger) error {
	var errs []error

	boolFormatter := func(v interface{}) (string, bool) {
		if b, ok := v.(bool); ok {
			if b {
				return "1", false
			}
			return "0", false
		}
		return "", true
	}

	syncFormatter := func(v interface{}) (string, bool) {
		if mode, ok := v.(SynchronousMode); ok && mode != "" {
			switch mode {
			case SynchronousOff:
				return "0", false
			case SynchronousNormal:
				return "1", false
			case SynchronousFull:
				return "2", false
			case SynchronousExtra:
				return "3", false
			}
		}
		return "", true
	}

	// Formatter for enum options whose constants are already uppercase
	enumFormatter := func(v interface{}) (string, bool) {
		switch val := v.(type) {
		case JournalMode:
			if val != "" {
				return string(val), false
			}
		case LockingMode:
			if val != "" {
				return string(val), false
			}
		case fmt.Stringer:
			if s := val.String(); s != "" {
				return s, false
			}
		case string:
			if val != "" {
				return val, false
			}
		}
		return "", true
	}

	pragmas := []pragmaConfig{
		{"journal_mode", opts.Journal, false, enumFormatter},
		{"busy_timeout", opts.BusyTimeout, true, nil},           // Always set busy_timeout
		{"foreign_keys", opts.ForeignKeys, true, boolFormatter}, // Always set foreign_keys
		{"synchronous", opts.Synchronous, false, syncFormatter},
		{"cache_size", opts.CacheSize, false, nil},
		{"locking_mode", opts.LockingMode, false, enumFormatter},
		{"auto_vacuum", opts.AutoVacuum, false, nil},
		{"case_sensitive_like", opts.CaseSensitiveLike, false, boolFormatter},
		{"defer_foreign_keys", opts.DeferForeignKeys, true, boolFormatter}, // Always set defer_foreign_keys
		{"ignore_check_constraints", opts.IgnoreCheckConstraints, false, boolFormatter},
		{"query_only", opts.QueryOnly, false, boolFormatter},
		{"recursive_triggers", opts.RecursiveTriggers, false, boolFormatter},
		{"secure_delete", opts.SecureDelete, false, nil},
		{"writable_schema", opts.WritableSchema, false, boolFormatter},
	}

	for _, p := range pragmas {
		var sqlValueStr string

		switch v := p.value.(type) {
		case int:
			if v == 0 && !p.allowZero {
				continue
			}
			sqlValueStr = fmt.Sprintf("%d", v)

		case string:
			if v == "" {
				continue
			}
			sqlValueStr = v

		default:
			if p.formatValue != nil {
				var skipFormat bool
				sqlValueStr, skipFormat = p.formatValue(p.value)
				if skipFormat {
					continue
				}
			} else {
				if p.value == nil || (!p.allowZero && isZero(p.value)) {
					continue
				}
				sqlValueStr = fmt.Sprint(p.value)
			}
		}

		query := fmt.Sprintf("PRAGMA %s = %s;", p.name, sqlValueStr)
		logger.Debug().Str("pragma", p.name).Str("value", sqlValueStr).Msg("Applying PRAGMA")
		if _, err := conn.Exec(query); err != nil {
			logger.Error().Err(err).Str("pragma", p.name).Str("attempted_value", sqlValueStr).Msg("Failed to apply PRAGMA")
			errs = append(errs, fmt.Errorf("failed to apply PRAGMA %s=%s: %w", p.name, sqlValueStr, err))
		}
	}
	return errors.Join(errs...)
}

// isZero returns true if the value is the zero value for its type
func isZero(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return !val
	case int:
		return val == 0
	case string:
		return val == ""
	case fmt.Stringer:
		return val.String() == ""
	default:
		return v == nil
	}
}

// Conn returns the underlying database connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// beginTx starts a new database transaction with the given options
func (db *DB) beginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	db.logger.Debug().Msg("Starting database transaction")
	tx, err := db.conn.BeginTx(ctx, opts)
	if err != nil {
		db.logger.Error().Err(err).Msg("Failed to start database transaction")
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	return tx, nil
}

// WithTransaction executes a function within a database transaction.
// If the function returns an error, the transaction is rolled back;
// otherwise it is committed.
func (db *DB) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.beginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			db.logger.Error().Interface("panic", p).Msg("Panic occurred during transaction, rolling back")
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				db.logger.Error().Err(rollbackErr).Msg("Failed to rollback transaction during panic recovery")
			}
			panic(p) // Re-throw panic after rollback
		}
	}()

	if err := fn(tx); err != nil {
		db.logger.Debug().Err(err).Msg("Transaction function returned error, rolling back")
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			db.logger.Error().Err(rollbackErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		db.logger.Error().Err(err).Msg("Failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	db.logger.Debug().Msg("Transaction committed successfully")
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	db.logger.Info().Msg("Closing database connection")
	if err := db.conn.Close(); err != nil {
		db.logger.Error().Err(err).Msg("Failed to close database connection")
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// MigrateDatabase performs database migrations
func (db *DB) MigrateDatabase() error {
	db.logger.Info().Msg("Starting database migration")
	driver, err := migratesqlite.WithInstance(db.conn, &migratesqlite.Config{})
	if err != nil {
		db.logger.Error().Err(err).Msg("Failed to create database driver for migration")
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	// Extract the sub-filesystem containing only the migrations
	subFS, err := fs.Sub(migrationsFS, "migrations/sqlite")
	if err != nil {
		db.logger.Error().Err(err).Msg("Failed to create sub-filesystem for migrations")
		return fmt.Errorf("failed to create sub-filesystem: %w", err)
	}

	sourceInstance, err := iofs.New(subFS, ".")
	if err != nil {
		db.logger.Error().Err(err).Msg("Failed to create embedded file source for migration")
		return fmt.Errorf("failed to create embedded file source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceInstance, "sqlite", driver)
	if err != nil {
		db.logger.Error().Err(err).Msg("Failed to create migrator instance")
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		db.logger.Error().Err(err).Msg("Failed to get current migration version")
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	db.logger.Info().Uint("current_version", currentVersion).Bool("dirty", dirty).Msg("Current database migration version")

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		db.logger.Error().Err(upErr).Msg("Failed to apply migrations")
		return fmt.Errorf("failed to run migrations: %w", upErr)
	}

	newVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		db.logger.Error().Err(err).Msg("Failed to get migration version after applying migrations")
		// Don't return error here, migration might have partially succeeded
	}

	if upErr == migrate.ErrNoChange {
		db.logger.Info().Msg("No new migrations to apply")
	} else {
		db.logger.Info().Uint("previous_version", currentVersion).Uint("new_version", newVersion).Bool("dirty", dirty).Msg("Migrations applied successfully")
	}

	return nil
}
