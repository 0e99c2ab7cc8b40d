package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/gobatis/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// argList collects a repeatable -arg flag.
type argList []string

func (a *argList) String() string { return strings.Join(*a, ",") }

func (a *argList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

// Parse processes command-line arguments on top of the environment. It
// returns a populated app.Config, a boolean indicating if the program should
// exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	envCfg, err := app.LoadEnv()
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("gobatis", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
gobatis - run SQL statements declared in HCL mapper files.

Usage:
  gobatis [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to the configuration .hcl file.

Every option can also be set with a GOBATIS_* environment variable, read
from .env when present.

Options:
`)
		flagSet.PrintDefaults()
	}

	cfg := envCfg
	var runArgs argList
	flagSet.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Path to the configuration file.")
	flagSet.StringVar(&cfg.Environment, "env", cfg.Environment, "Environment to use instead of default_environment.")
	flagSet.StringVar(&cfg.Statement, "run", cfg.Statement, "ID of the mapped statement to run.")
	flagSet.Var(&runArgs, "arg", "Statement argument, repeatable. Numbers, true/false and null are converted; quote with '' to keep a string.")
	flagSet.BoolVar(&cfg.Dump, "dump", cfg.Dump, "Dump every result row with its full structure.")
	flagSet.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.IntVar(&cfg.HTTPPort, "http-port", cfg.HTTPPort, "Port for the HTTP inspect server. 0 is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if len(runArgs) > 0 {
		cfg.Args = runArgs
	}
	if cfg.ConfigPath == "" && flagSet.NArg() > 0 {
		cfg.ConfigPath = flagSet.Arg(0)
	}

	if cfg.ConfigPath == "" {
		slog.Debug("No configuration path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config.ConfigPath, "statement", config.Statement)
	return config, false, nil
}
