// Package tui renders acquisition progress in the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikolchaa/resuma/pkg/events"
)

const (
	maxBarWidth = 48
	padding     = 34
)

// EventMsg delivers a pipeline event to the model.
type EventMsg events.Event

// FinishedMsg reports that an asset's task has returned.
type FinishedMsg struct {
	Asset string
	Err   error
}

type row struct {
	asset    string
	stage    events.Stage
	percent  float64
	bar      progress.Model
	done     bool
	path     string
	err      string
	finished bool
}

// Model shows one progress bar per asset and quits when every asset has
// finished.
type Model struct {
	rows    []*row
	index   map[string]*row
	quit    key.Binding
	Aborted bool
}

// New creates a model tracking assets in display order.
func New(assets ...string) Model {
	m := Model{
		index: make(map[string]*row, len(assets)),
		quit:  key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "detach")),
	}
	for _, a := range assets {
		m.track(a)
	}
	return m
}

func (m *Model) track(asset string) *row {
	if r, ok := m.index[asset]; ok {
		return r
	}
	r := &row{
		asset: asset,
		stage: events.StageDownload,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth), progress.WithoutPercentage()),
	}
	m.rows = append(m.rows, r)
	m.index[asset] = r
	return r
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.quit) {
			m.Aborted = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		width := min(max(msg.Width-padding, 10), maxBarWidth)
		for _, r := range m.rows {
			r.bar.Width = width
		}

	case EventMsg:
		m.apply(events.Event(msg))

	case FinishedMsg:
		r := m.track(msg.Asset)
		r.finished = true
		if msg.Err != nil && r.err == "" {
			r.err = msg.Err.Error()
		}
		if m.allFinished() {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) apply(e events.Event) {
	r := m.track(e.Asset)
	r.stage = e.Stage

	switch e.Kind {
	case events.KindProgress:
		r.percent = e.Percent
	case events.KindComplete:
		r.percent = 100
		r.done = true
		r.path = e.Path
	case events.KindError:
		r.err = e.Message
	}
}

func (m Model) allFinished() bool {
	for _, r := range m.rows {
		if !r.finished {
			return false
		}
	}
	return len(m.rows) > 0
}

// Failed returns the assets that reported an error.
func (m Model) Failed() []string {
	var out []string
	for _, r := range m.rows {
		if r.err != "" {
			out = append(out, r.asset)
		}
	}
	return out
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	for _, r := range m.rows {
		b.WriteString(nameStyle.Render(r.asset))
		b.WriteString(stageStyle.Render(string(r.stage)))

		switch {
		case r.err != "":
			b.WriteString(errorStyle.Render("✗ " + r.err))
		case r.finished && r.done:
			b.WriteString(successStyle.Render("✓ " + r.path))
		default:
			b.WriteString(r.bar.ViewAs(r.percent / 100))
			if r.percent == 0 && r.stage == events.StageDownload {
				b.WriteString(" waiting")
			} else {
				fmt.Fprintf(&b, " %5.1f%%", r.percent)
			}
		}
		b.WriteByte('\n')
	}
	if !m.allFinished() {
		b.WriteString(helpStyle.Render(m.quit.Help().Key + " " + m.quit.Help().Desc))
		b.WriteByte('\n')
	}
	return b.String()
}
