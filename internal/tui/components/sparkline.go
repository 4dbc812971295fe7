package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var levels = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Sparkline draws the most recent Width request latencies on one line.
type Sparkline struct {
	Data  []time.Duration
	Width int
	Max   time.Duration
	Style lipgloss.Style
	Label string
}

func NewSparkline(width int, label string, style lipgloss.Style) Sparkline {
	return Sparkline{
		Width: width,
		Label: label,
		Style: style,
		Data:  make([]time.Duration, 0, width),
	}
}

func (s *Sparkline) Add(d time.Duration) {
	s.Data = append(s.Data, d)
	if len(s.Data) > s.Width {
		s.Data = s.Data[len(s.Data)-s.Width:]
	}

	// Scale to the visible window.
	s.Max = 0
	for _, v := range s.Data {
		if v > s.Max {
			s.Max = v
		}
	}
}

func (s Sparkline) View() string {
	if s.Width <= 0 {
		return ""
	}

	var graph strings.Builder
	for _, v := range s.Data {
		idx := 0
		if s.Max > 0 {
			idx = int(float64(v) / float64(s.Max) * float64(len(levels)-1))
		}
		if idx < 0 {
			idx = 0
		}
		if idx >= len(levels) {
			idx = len(levels) - 1
		}
		graph.WriteString(levels[idx])
	}
	if pad := s.Width - len(s.Data); pad > 0 {
		graph.WriteString(strings.Repeat(" ", pad))
	}

	return s.Style.Render(s.Label) + "\n" + s.Style.Render(graph.String())
}
