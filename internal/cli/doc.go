// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. Flags
// override the GOBATIS_* environment, which in turn may come from a .env
// file.
package cli
