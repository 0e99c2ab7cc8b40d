// Package apptest starts an App on configuration files written to a
// temporary directory.
package apptest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gobatis/internal/app"
	"github.com/specialistvlad/gobatis/internal/testutil"
)

// ConfigFile is the name of the main configuration among the harness files.
const ConfigFile = "gobatis.hcl"

// HarnessResult holds the outcome of starting an App from test files.
type HarnessResult struct {
	// Output holds both the logs and the statement output.
	Output *testutil.SafeBuffer
	Err    error
	App    *app.App
	Dir    string
}

// RunAppTest writes files (which must include ConfigFile) and starts an App
// on them with debug logging. appConfig may be nil; its ConfigPath is
// replaced. The App is closed when the test ends. Set GOBATIS_TEST_LOGS=true
// to print the output of every test.
func RunAppTest(t *testing.T, files map[string]string, appConfig *app.Config, modules ...app.Module) *HarnessResult {
	t.Helper()

	dir := testutil.WriteFiles(t, files)
	if appConfig == nil {
		appConfig = &app.Config{}
	}
	appConfig.ConfigPath = filepath.Join(dir, ConfigFile)
	appConfig.LogLevel = "debug"
	appConfig.LogFormat = "text"

	out := &testutil.SafeBuffer{}
	a, err := app.NewApp(context.Background(), out, appConfig, modules...)
	if a != nil {
		t.Cleanup(func() { a.Close() })
	}

	t.Cleanup(func() {
		if os.Getenv("GOBATIS_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
		}
	})

	return &HarnessResult{Output: out, Err: err, App: a, Dir: dir}
}
