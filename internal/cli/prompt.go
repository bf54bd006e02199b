package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/crestline-data/datamove/pkg/datamove"
)

// resolvePassword reads a secret from the named environment variable,
// falling back to a hidden terminal prompt. A non-interactive stdin with
// no environment value is a configuration error.
func resolvePassword(envVar, prompt string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("%s is not set and stdin is not a terminal: %w", envVar, datamove.ErrInvalidConfig)
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(secret), nil
}
