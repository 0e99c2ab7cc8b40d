package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gobatis/internal/datasource"
	"github.com/stretchr/testify/require"
)

// NewSQLiteDB opens a file-backed SQLite database in a temporary directory,
// runs the given DDL statements and closes the database when the test ends.
func NewSQLiteDB(t *testing.T, ddl ...string) *sql.DB {
	t.Helper()

	f := &datasource.SQLiteFactory{}
	require.NoError(t, f.SetProperties(map[string]string{
		"path": filepath.Join(t.TempDir(), "test.db"),
	}))
	db, err := f.DataSource()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "executing %q", stmt)
	}
	return db
}
