// Package tui shows a live view of a running session.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fgharness/internal/exerciser"
	"fgharness/internal/tui/components"
	"fgharness/internal/tui/styles"
)

type ProgressMsg exerciser.Progress

type DoneMsg struct {
	Err error
}

type Model struct {
	Action   string
	Progress progress.Model
	Latency  components.Sparkline

	Last      exerciser.Progress
	StartTime time.Time
	Finished  bool
	Err       error

	Width int

	updates exerciser.UpdateChan
	done    <-chan struct{}
	errFn   func() error
}

// NewModel watches updates until done is closed; errFn is read once done
// closes.
func NewModel(action string, updates exerciser.UpdateChan, done <-chan struct{}, errFn func() error) Model {
	return Model{
		Action:    action,
		Progress:  progress.New(progress.WithDefaultGradient()),
		Latency:   components.NewSparkline(40, "Latency", styles.Warn),
		StartTime: time.Now(),
		updates:   updates,
		done:      done,
		errFn:     errFn,
	}
}

func waitForUpdate(sub exerciser.UpdateChan, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-sub:
			return ProgressMsg(p)
		case <-done:
			return nil
		}
	}
}

func waitForDone(done <-chan struct{}, errFn func() error) tea.Cmd {
	return func() tea.Msg {
		<-done
		return DoneMsg{Err: errFn()}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForUpdate(m.updates, m.done),
		waitForDone(m.done, m.errFn),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.Last = exerciser.Progress(msg)
		m.Latency.Add(msg.LastLatency)
		pct := 0.0
		if msg.Planned > 0 {
			pct = float64(msg.Completed) / float64(msg.Planned)
		}
		return m, tea.Batch(m.Progress.SetPercent(pct), waitForUpdate(m.updates, m.done))

	case DoneMsg:
		m.Finished = true
		m.Err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Progress.Width = msg.Width - 4
		half := (msg.Width / 2) - 4
		if half < 10 {
			half = 10
		}
		m.Latency.Width = half
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}

	s.WriteString(styles.Title.Render(m.Action))
	s.WriteString("\n\n")

	col1 := fmt.Sprintf("REQ: %d/%d\nBYTES: %d", m.Last.Completed, m.Last.Planned, m.Last.Bytes)
	col2 := fmt.Sprintf("LAST: %s\nELAPSED: %s",
		m.Last.LastLatency.Round(time.Millisecond),
		time.Since(m.StartTime).Round(time.Second))
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(col1),
		styles.Box.Render(col2),
		styles.Box.Render(m.Latency.View()),
	))
	s.WriteString("\n\n")
	s.WriteString(m.Progress.View())
	s.WriteString("\n\n")

	if m.Finished {
		s.WriteString(styles.Outcome(m.Err))
	} else {
		s.WriteString(styles.Subtle.Render("waiting for session... (q to detach)"))
	}
	s.WriteString("\n")
	return s.String()
}

// Run blocks showing the live view until the session finishes or the user
// quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m).Run()
	return err
}
