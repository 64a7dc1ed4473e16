// Package cli parses command-line arguments into an app.Config and owns the
// mapping from argument errors to process exit codes.
package cli
