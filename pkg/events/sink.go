package events

import (
	"context"
	"errors"

	"github.com/nikolchaa/resuma/internal/logger"
)

// Sink receives events. Delivery is best effort: the orchestrator logs and
// drops a failed emit and never retries it.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// FuncSink adapts a plain function to Sink.
type FuncSink func(ctx context.Context, e Event) error

// Emit calls f.
func (f FuncSink) Emit(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// ChanSink forwards events into a channel, blocking until the receiver
// takes the event or ctx is done.
type ChanSink struct {
	ch chan<- Event
}

// NewChanSink creates a sink writing into ch.
func NewChanSink(ch chan<- Event) *ChanSink {
	return &ChanSink{ch: ch}
}

// Emit sends e on the channel.
func (s *ChanSink) Emit(ctx context.Context, e Event) error {
	select {
	case s.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSink writes events to the process logger. Progress goes to debug so a
// normal run only shows outcomes.
type LogSink struct{}

// Emit logs e.
func (LogSink) Emit(_ context.Context, e Event) error {
	fields := logger.Fields{"event": e.Name()}
	if e.TaskID != "" {
		fields["task"] = e.TaskID
	}
	switch e.Kind {
	case KindProgress:
		fields["percent"] = e.Percent
		logger.Debug("progress", fields)
	case KindComplete:
		fields["path"] = e.Path
		logger.Success(string(e.Stage)+" complete", fields)
	case KindError:
		fields["error"] = e.Message
		logger.Error(string(e.Stage)+" failed", fields)
	}
	return nil
}

type multiSink []Sink

// Multi fans every event out to all sinks. One failing sink does not stop
// delivery to the others; their errors are joined.
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiSink) Emit(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
var Discard Sink = FuncSink(func(context.Context, Event) error { return nil })
