package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(filepath.Join(t.TempDir(), "parinfer.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })
	return db
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name          string
		dsn           func(t *testing.T) string
		debug         bool
		expectedError bool
		errorContains string
	}{
		{
			name:  "memory database",
			dsn:   func(t *testing.T) string { return ":memory:" },
			debug: false,
		},
		{
			name:  "memory database with debug logging",
			dsn:   func(t *testing.T) string { return ":memory:" },
			debug: true,
		},
		{
			name: "file database",
			dsn:  func(t *testing.T) string { return filepath.Join(t.TempDir(), "snap.db") },
		},
		{
			name: "nested directories are created",
			dsn:  func(t *testing.T) string { return filepath.Join(t.TempDir(), "a", "b", "snap.db") },
		},
		{
			name:          "empty dsn",
			dsn:           func(t *testing.T) string { return "" },
			expectedError: true,
			errorContains: "empty database DSN",
		},
		{
			name: "directory cannot be created",
			dsn: func(t *testing.T) string {
				blocker := filepath.Join(t.TempDir(), "file")
				require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
				return filepath.Join(blocker, "sub", "snap.db")
			},
			expectedError: true,
			errorContains: "failed to create database directory",
		},
		{
			name:          "unreachable remote database",
			dsn:           func(t *testing.T) string { return "http://127.0.0.1:1/db" },
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Connect(tt.dsn(t), tt.debug)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, db)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, db)
			defer Close(db)

			sqlDB, err := db.DB()
			require.NoError(t, err)
			require.NoError(t, sqlDB.Ping())

			var fkEnabled int
			require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fkEnabled).Error)
			assert.Equal(t, 1, fkEnabled)

			for _, table := range []string{"snapshots", "runs"} {
				assert.True(t, db.Migrator().HasTable(table), "Table %s should exist", table)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		dsn      string
		expected bool
	}{
		{"libsql://my-db.turso.io", true},
		{"https://my-db.turso.io", true},
		{"http://localhost:8080", true},
		{"wss://my-db.turso.io", true},
		{"/tmp/parinfer.db", false},
		{"parinfer.db", false},
		{":memory:", false},
		{"libsql", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isURL(tt.dsn); got != tt.expected {
			t.Errorf("isURL(%q) = %v, want %v", tt.dsn, got, tt.expected)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasIndex("snapshots", "idx_snapshots_document"))
	assert.True(t, db.Migrator().HasColumn("runs", "options"))
}

func TestClose(t *testing.T) {
	assert.NoError(t, Close(nil))

	db, err := Connect(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, Close(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}
