package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikolchaa/resuma/pkg/events"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Sink forwards pipeline events to a running program.
type Sink struct {
	program Sender
}

// NewSink creates a Sink sending to program.
func NewSink(program Sender) *Sink {
	return &Sink{program: program}
}

// Emit implements events.Sink.
func (s *Sink) Emit(_ context.Context, e events.Event) error {
	s.program.Send(EventMsg(e))
	return nil
}
