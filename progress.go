package nb2pdf

import (
	"fmt"
	"io"
)

// ProgressReporter receives informational notifications at pipeline phase
// transitions. Reporters are purely observational: the orchestrator shields
// itself from them, and nothing a reporter does can change an export's
// outcome.
type ProgressReporter interface {
	Start(message string)
	Update(message string)
	Finish(message string)
}

// NopProgress discards all notifications.
type NopProgress struct{}

func (NopProgress) Start(string)  {}
func (NopProgress) Update(string) {}
func (NopProgress) Finish(string) {}

// WriterProgress prints one line per notification, typically to stderr.
type WriterProgress struct {
	W io.Writer
}

func (p WriterProgress) Start(message string)  { fmt.Fprintln(p.W, message) }
func (p WriterProgress) Update(message string) { fmt.Fprintln(p.W, message) }
func (p WriterProgress) Finish(message string) { fmt.Fprintln(p.W, message) }

// Compile-time interface checks.
var (
	_ ProgressReporter = NopProgress{}
	_ ProgressReporter = WriterProgress{}
)
