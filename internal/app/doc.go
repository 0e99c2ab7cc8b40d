// Package app wires a configuration file, registered mapper modules and a
// session factory into one runnable unit. It runs a single mapped statement
// and can expose an inspect server, independent of any entrypoint such as
// the CLI.
package app
