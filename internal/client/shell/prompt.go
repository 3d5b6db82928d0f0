package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordReader reads one secret line without echoing it.
type PasswordReader func() (string, error)

// TerminalPasswordReader reads from f with echo off when f is a terminal.
// It returns nil otherwise, so the shell falls back to plain line input.
func TerminalPasswordReader(f *os.File, out io.Writer) PasswordReader {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
}

// readLine returns the next line without its line ending. A final line
// without a newline is returned before io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ask prints question and reads the answer, trimmed.
func (s *Shell) ask(question string) (string, error) {
	fmt.Fprint(s.out, cyan(question)+" ")
	line, err := readLine(s.in)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askSecret is ask for passwords. Secrets are not trimmed. Input already
// sitting in the line buffer (typed ahead or pasted) is consumed from there
// so that lines stay in order; only an empty buffer goes to the password
// reader.
func (s *Shell) askSecret(question string) (string, error) {
	fmt.Fprint(s.out, cyan(question)+" ")
	if s.password != nil && s.in.Buffered() == 0 {
		return s.password()
	}
	return readLine(s.in)
}
