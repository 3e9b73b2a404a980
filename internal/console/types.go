package console

import (
	"bufio"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const (
	userPrefix = "Tu: "
	prompt     = "> "
)

// Input holds the pending line. The terminal loop writes into it before
// each submit.
type Input struct {
	mu      sync.Mutex
	value   string
	focused bool
}

// Button mirrors the send control so the loop can tell whether a send is
// in flight.
type Button struct {
	mu      sync.Mutex
	enabled bool
	label   string
}

// Log prints transcript markup as plain text.
type Log struct {
	mu sync.Mutex
	w  io.Writer
}

// Terminal reads lines from stdin, with line editing when stdin is a tty.
type Terminal struct {
	in      *os.File
	out     io.Writer
	term    *term.Terminal
	state   *term.State
	scanner *bufio.Scanner
}
