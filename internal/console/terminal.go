package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Open prepares line input from in. When in is a terminal it is switched to
// raw mode and read through x/term; otherwise lines are scanned as-is.
// Close must be called to restore the terminal.
func Open(in *os.File, out io.Writer) (*Terminal, error) {
	t := &Terminal{in: in, out: out}

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		t.scanner = bufio.NewScanner(in)
		return t, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	t.state = state
	t.term = term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, prompt)
	return t, nil
}

// Writer is where transcript output should go. In raw mode it translates
// newlines for the terminal.
func (t *Terminal) Writer() io.Writer {
	if t.term != nil {
		return t.term
	}
	return t.out
}

// ReadLine returns io.EOF when input ends.
func (t *Terminal) ReadLine() (string, error) {
	if t.term != nil {
		return t.term.ReadLine()
	}

	fmt.Fprint(t.out, prompt)
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return t.scanner.Text(), nil
}

func (t *Terminal) Close() error {
	if t.state == nil {
		return nil
	}
	return term.Restore(int(t.in.Fd()), t.state)
}
