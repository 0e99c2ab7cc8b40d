package integrationtests

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gobatis/internal/app"
	"github.com/specialistvlad/gobatis/internal/app/apptest"
	"github.com/specialistvlad/gobatis/internal/session"
	"github.com/stretchr/testify/require"
)

// sqliteConfig returns a configuration file that opens a SQLite database in
// a per-test directory and loads every mapper under "mappers".
func sqliteConfig(t *testing.T, settings string) string {
	t.Helper()
	t.Setenv("GOBATIS_IT_DB", filepath.Join(t.TempDir(), "it.db"))
	return settings + `
default_environment = "it"

environment "it" {
  data_source "SQLITE" {
    properties = { path = env("GOBATIS_IT_DB") }
  }
}

mappers {
  paths = ["mappers"]
}
`
}

// startApp starts an App and fails the test on startup errors.
func startApp(t *testing.T, files map[string]string, modules ...app.Module) *app.App {
	t.Helper()
	result := apptest.RunAppTest(t, files, nil, modules...)
	require.NoError(t, result.Err, "startup failed:\n%s", result.Output.String())
	return result.App
}

func exec(t *testing.T, a *app.App, ddl ...string) {
	t.Helper()
	for _, stmt := range ddl {
		_, err := a.Configuration().Environment.DB.Exec(stmt)
		require.NoError(t, err, "executing %q", stmt)
	}
}

func openSession(t *testing.T, a *app.App, opts ...session.Option) session.Session {
	t.Helper()
	ctx := context.Background()
	sess, err := a.Sessions().OpenSession(ctx, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close(ctx) })
	return sess
}
