// Package cli contains shared helpers for the cleargate command line:
// output formatting, command errors, and signal handling.
package cli
