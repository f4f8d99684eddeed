// Package events carries acquisition progress from the orchestrator to
// whoever is watching: the terminal UI, logs, Redis subscribers and
// WebSocket clients.
package events

import (
	"encoding/json"
	"time"
)

// Stage is the pipeline phase an event belongs to.
type Stage string

// Pipeline stages.
const (
	StageDownload Stage = "download"
	StageExtract  Stage = "extract"
)

// Kind distinguishes progress updates from terminal outcomes.
type Kind string

// Event kinds.
const (
	KindProgress Kind = "progress"
	KindComplete Kind = "complete"
	KindError    Kind = "error"
)

// Event is one observation of an acquisition. Percent is set for progress
// events, Path for completions and Message for errors.
type Event struct {
	Asset   string    `json:"asset"`
	Stage   Stage     `json:"stage"`
	Kind    Kind      `json:"kind"`
	Percent float64   `json:"percent"`
	Path    string    `json:"path,omitempty"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
	TaskID  string    `json:"task_id,omitempty"`
}

// Name renders the scoped signal name, e.g. "download_progress:tiny-7b".
func (e Event) Name() string {
	return string(e.Stage) + "_" + string(e.Kind) + ":" + e.Asset
}

// Terminal reports whether no further events follow for this task.
// A download completion is terminal only when nothing is extracted; callers
// that care track that themselves.
func (e Event) Terminal() bool {
	return e.Kind == KindError || (e.Stage == StageExtract && e.Kind == KindComplete)
}

// MarshalJSON adds the signal name to the encoded event. Progress events
// always carry percent, including the 0 sent for an unknown length.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	out := struct {
		Event   string   `json:"event"`
		Percent *float64 `json:"percent,omitempty"`
		plain
	}{Event: e.Name(), plain: plain(e)}
	if e.Kind == KindProgress {
		out.Percent = &e.Percent
	}
	return json.Marshal(out)
}

// Progress builds a download progress event.
func Progress(asset string, percent float64) Event {
	return Event{Asset: asset, Stage: StageDownload, Kind: KindProgress, Percent: percent, Time: time.Now()}
}

// Complete builds a completion event carrying the resulting path.
func Complete(asset string, stage Stage, path string) Event {
	return Event{Asset: asset, Stage: stage, Kind: KindComplete, Path: path, Time: time.Now()}
}

// Failure builds an error event carrying a human-readable message.
func Failure(asset string, stage Stage, message string) Event {
	return Event{Asset: asset, Stage: stage, Kind: KindError, Message: message, Time: time.Now()}
}
