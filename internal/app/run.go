// Package app implements the zskema command-line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrInvalid is returned when at least one document failed validation.
var ErrInvalid = errors.New("validation failed")

// Run executes the CLI. environ supplies ZSKEMA_* settings; nil means the
// process environment.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, environ map[string]string) error {
	cfg, err := LoadConfig(environ)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}
	rootCmd := NewRootCmd(&cfg, stderr)
	rootCmd.SetArgs(args[1:])
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
