package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"smartcampus/portal/internal/models"
)

// readPassword prompts on the terminal without echo. Piped input is read as a
// single line so scripts can still log in.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Mot de passe: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	return readPasswordLine(os.Stdin)
}

// readPasswordLine returns the first line of r without its line ending.
// Inner spaces are part of the password.
func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password on stdin")
	}
	return line, nil
}

func (a *app) printReference(items any) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	switch list := items.(type) {
	case []models.Classe:
		fmt.Fprintln(w, "ID\tNOM\tNIVEAU")
		for _, c := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Nom, c.Niveau)
		}
	case []models.Filiere:
		fmt.Fprintln(w, "ID\tNOM")
		for _, f := range list {
			fmt.Fprintf(w, "%d\t%s\n", f.ID, f.Nom)
		}
	case []models.Matiere:
		fmt.Fprintln(w, "ID\tCODE\tNOM")
		for _, m := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\n", m.ID, m.Code, m.Nom)
		}
	}
	return w.Flush()
}
