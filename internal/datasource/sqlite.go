package datasource

import (
	"database/sql"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// SQLiteFactory opens a SQLite database through modernc.org/sqlite.
//
// Properties: path (defaults to ":memory:"), busy_timeout in milliseconds
// (defaults to 5000).
type SQLiteFactory struct {
	Path        string
	BusyTimeout string

	once sync.Once
	db   *sql.DB
	err  error
}

func (f *SQLiteFactory) SetProperties(props map[string]string) error {
	f.Path = strings.TrimSpace(props["path"])
	if f.Path == "" {
		f.Path = memoryPath
	}
	f.BusyTimeout = strings.TrimSpace(props["busy_timeout"])
	if f.BusyTimeout == "" {
		f.BusyTimeout = "5000"
	}
	return nil
}

// DSN returns the connection string handed to the driver.
func (f *SQLiteFactory) DSN() string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(" + f.BusyTimeout + ")"
	if f.Path == memoryPath {
		return memoryPath + "?" + pragmas
	}
	return "file:" + filepath.Clean(f.Path) + "?" + pragmas + "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// DataSource opens the database on first call. An in-memory database is
// private to its connection, so the pool is pinned to a single connection.
func (f *SQLiteFactory) DataSource() (*sql.DB, error) {
	f.once.Do(func() {
		if f.Path == "" {
			_ = f.SetProperties(nil)
		}
		f.db, f.err = open("sqlite", f.DSN())
		if f.err == nil && f.Path == memoryPath {
			f.db.SetMaxOpenConns(1)
		}
	})
	return f.db, f.err
}
