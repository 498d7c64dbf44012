package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB is the history log: an append-mostly table of reminder, data and
// security events kept next to the spreadsheet.
type DB struct {
	*sql.DB
	migrator *goose.Provider
}

// Open opens the history database and applies pending migrations
func Open(dbPath string, log zerolog.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL so the reminder goroutine can append while the UI reads
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // SQLite only supports one writer
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	db := &DB{DB: sqlDB}
	if err := db.migrate(context.Background(), log); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// migrate runs the embedded goose migrations. The provider keeps goose
// off its package-level logger, which would write over the TUI.
func (db *DB) migrate(ctx context.Context, log zerolog.Logger) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		log.Info().
			Int64("version", r.Source.Version).
			Dur("took", r.Duration).
			Msg("applied history migration")
	}
	db.migrator = provider
	return nil
}

// SchemaVersion is the newest applied migration
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	return db.migrator.GetDBVersion(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Transaction executes a function within a transaction
func (db *DB) Transaction(fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
