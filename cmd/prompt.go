package cmd

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// readPasswordFromTerminal prompts on stderr and reads a password with
// echo disabled.
func readPasswordFromTerminal(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("stdin is not a terminal, cannot prompt for a password")
	}
	fmt.Fprint(os.Stderr, prompt)
	pwd, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
