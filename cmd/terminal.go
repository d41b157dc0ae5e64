package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errNotATerminal = errors.New("stdin is not a terminal; pass the value with --value")

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func readPassword(prompt string, errOut io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errNotATerminal
	}

	fmt.Fprint(errOut, prompt)
	value, err := term.ReadPassword(fd)
	fmt.Fprintln(errOut)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}

	return strings.TrimRight(string(value), "\r\n"), nil
}
