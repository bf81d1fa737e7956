package logger

import (
	"io"
	"log"
)

// StdLogger writes through the standard library logger. Debug lines are
// dropped unless verbose is set.
type StdLogger struct {
	l       *log.Logger
	verbose bool
}

// New creates a logger writing to w with the given prefix.
func New(w io.Writer, prefix string, verbose bool) *StdLogger {
	return &StdLogger{
		l:       log.New(w, prefix, log.LstdFlags),
		verbose: verbose,
	}
}

func (s *StdLogger) Debug(message string) {
	if !s.verbose {
		return
	}
	s.l.Printf("DEBUG %s", message)
}

func (s *StdLogger) Info(message string) {
	s.l.Printf("INFO %s", message)
}

func (s *StdLogger) Error(message string) {
	s.l.Printf("ERROR %s", message)
}

// Discard is a logger that drops everything.
func Discard() *StdLogger {
	return New(io.Discard, "", false)
}
