// Package settings holds the closed sets of named behaviors a configuration
// can select (auto-mapping strategy, unknown-column policy, executor type,
// local cache scope) and the Settings aggregate that carries them.
//
// Every enum prints as the upper-case name used in configuration files and
// parses case-insensitively.
package settings
