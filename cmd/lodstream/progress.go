package main

import (
	"fmt"
	"io"
	"os"
	"time"
)

// fatal prints a single-line failure message and terminates with a non-zero
// status.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\nFATAL: "+format+"\n", args...)
	os.Exit(1)
}

// progress prints timestamped step lines: each step opens a pending line
// that the next step, Done or Fail closes.
type progress struct {
	w    io.Writer
	open bool
}

func (p *progress) out() io.Writer {
	if p.w == nil {
		return os.Stdout
	}
	return p.w
}

// Step closes any pending line with ok and opens a new one.
func (p *progress) Step(msg string) {
	if p.open {
		fmt.Fprintln(p.out(), "ok")
	}
	fmt.Fprintf(p.out(), "[%s] %s ... ", time.Now().Format("2006-01-02 15:04:05"), msg)
	p.open = true
}

// Done closes the last pending line with ok.
func (p *progress) Done() {
	if p.open {
		fmt.Fprintln(p.out(), "ok")
		p.open = false
	}
}

// Fail closes the last pending line with ko.
func (p *progress) Fail() {
	if p.open {
		fmt.Fprintln(p.out(), "ko")
		p.open = false
	}
}
