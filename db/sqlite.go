package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	puresqlite "github.com/glebarez/sqlite"
	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/parinfer/models"
)

// AuthTokenEnv names the variable Connect reads the libsql auth token from.
const AuthTokenEnv = "PARINFER_LIBSQL_AUTH_TOKEN"

// Connect opens dsn using the token from AuthTokenEnv for remote databases.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	return ConnectWithToken(dsn, os.Getenv(AuthTokenEnv), debug)
}

// ConnectWithToken establishes a database connection and runs migrations.
// File paths use the pure Go SQLite driver; libsql://, http:// and https://
// URLs go through the libsql connector.
func ConnectWithToken(dsn, token string, debug bool) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database DSN")
	}

	remote := isURL(dsn)
	if !remote && dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if debug {
		// stdout may be carrying MCP frames.
		config.Logger = logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Info,
		})
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if remote {
		var (
			connector driver.Connector
			err       error
		)
		if token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create libsql connector: %w", err)
		}

		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		dialector = puresqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if !remote {
		// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY
		// and keeps :memory: databases from splitting per connection.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// isURL reports whether dsn names a remote libsql database.
func isURL(dsn string) bool {
	for _, prefix := range []string{"libsql://", "http://", "https://", "wss://", "ws://"} {
		if strings.HasPrefix(dsn, prefix) {
			return true
		}
	}
	return false
}

// Migrate runs database migrations.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Snapshot{},
		&models.Run{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
