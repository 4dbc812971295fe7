package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fgharness/internal/exerciser"
)

func newTestModel() (Model, exerciser.UpdateChan, chan struct{}) {
	updates := make(exerciser.UpdateChan, 4)
	done := make(chan struct{})
	m := NewModel("action.generate_mobile_traffic", updates, done, func() error { return nil })
	return m, updates, done
}

func TestProgressMsgUpdatesView(t *testing.T) {
	m, _, _ := newTestModel()

	next, cmd := m.Update(ProgressMsg{Planned: 2, Completed: 1, LastLatency: 42 * time.Millisecond, Bytes: 0})
	require.NotNil(t, cmd)
	got := next.(Model)

	assert.Equal(t, 1, got.Last.Completed)
	assert.Equal(t, []time.Duration{42 * time.Millisecond}, got.Latency.Data)
	assert.Contains(t, got.View(), "REQ: 1/2")
	assert.Contains(t, got.View(), "waiting for session")
}

func TestDoneMsgQuits(t *testing.T) {
	m, _, _ := newTestModel()

	next, cmd := m.Update(DoneMsg{Err: errors.New("request 0 failed")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	got := next.(Model)
	assert.True(t, got.Finished)
	assert.Contains(t, got.View(), "FAILED: request 0 failed")
}

func TestWaitForUpdate(t *testing.T) {
	_, updates, done := newTestModel()

	updates <- exerciser.Progress{Planned: 1, Completed: 1, Done: true}
	msg := waitForUpdate(updates, done)()
	assert.Equal(t, ProgressMsg{Planned: 1, Completed: 1, Done: true}, msg)

	close(done)
	assert.Nil(t, waitForUpdate(updates, done)())
	assert.Equal(t, DoneMsg{}, waitForDone(done, func() error { return nil })())
}

func TestWindowResize(t *testing.T) {
	m, _, _ := newTestModel()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	got := next.(Model)
	assert.Equal(t, 96, got.Progress.Width)
	assert.Equal(t, 46, got.Latency.Width)
}
