// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It merges
// flags, GRIDFLOW_* environment variables and an optional config file into
// the application's configuration.
package cli
