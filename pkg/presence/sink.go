package presence

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolchaa/resuma/pkg/events"
)

// progressStep is the smallest progress change that updates the activity.
const progressStep = 10

// Sink mirrors acquisition events into the Discord activity.
type Sink struct {
	client *Client

	mu   sync.Mutex
	last map[string]int
}

// NewSink creates a Sink updating client.
func NewSink(client *Client) *Sink {
	return &Sink{client: client, last: make(map[string]int)}
}

// Emit implements events.Sink. Updates are dropped while the client is not
// connected.
func (s *Sink) Emit(ctx context.Context, e events.Event) error {
	if !s.client.Connected() {
		return nil
	}

	var a Activity
	switch e.Kind {
	case events.KindProgress:
		step := int(e.Percent) / progressStep
		s.mu.Lock()
		prev, seen := s.last[e.Asset]
		if seen && step <= prev {
			s.mu.Unlock()
			return nil
		}
		s.last[e.Asset] = step
		s.mu.Unlock()
		a = Activity{Details: "Downloading " + e.Asset, State: fmt.Sprintf("%d%%", step*progressStep), SmallImage: "download"}
	case events.KindComplete:
		s.forget(e.Asset)
		a = Activity{Details: "Installed " + e.Asset, State: string(e.Stage) + " complete"}
	case events.KindError:
		s.forget(e.Asset)
		a = Activity{Details: "Failed " + e.Asset, State: e.Message}
	}
	return s.client.SetActivity(ctx, a)
}

func (s *Sink) forget(asset string) {
	s.mu.Lock()
	delete(s.last, asset)
	s.mu.Unlock()
}
