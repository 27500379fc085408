package tui

import (
	"io"
	"log"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

func newModel(t *testing.T) (Model, *tracker.Tracker) {
	t.Helper()
	now := time.Date(2026, 2, 27, 9, 0, 0, 0, time.Local)
	tr := tracker.New(tracker.Options{
		Clock:  func() time.Time { return now },
		Logger: log.New(io.Discard, "", 0),
	})
	return New(tr, ""), tr
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestIdleModelDoesNotTick(t *testing.T) {
	m, _ := newModel(t)
	assert.Nil(t, m.Init())
	assert.False(t, m.Ticking())
}

func TestStartArmsTick(t *testing.T) {
	m, tr := newModel(t)
	m, cmd := update(t, m, key('s'))
	assert.Equal(t, model.StateRunning, tr.TimerState())
	assert.NotNil(t, cmd)
	assert.True(t, m.Ticking())

	m, cmd = update(t, m, tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.True(t, m.Ticking())
}

func TestPauseStopsRearming(t *testing.T) {
	m, tr := newModel(t)
	m, _ = update(t, m, key('s'))

	m, cmd := update(t, m, key('p'))
	assert.Equal(t, model.StatePaused, tr.TimerState())
	assert.Nil(t, cmd)

	m, cmd = update(t, m, tickMsg(time.Now()))
	assert.Nil(t, cmd)
	assert.False(t, m.Ticking())

	m, cmd = update(t, m, key('p'))
	assert.Equal(t, model.StateRunning, tr.TimerState())
	assert.NotNil(t, cmd)
	assert.True(t, m.Ticking())
}

func TestPendingTickIsNotDuplicated(t *testing.T) {
	m, _ := newModel(t)
	m, _ = update(t, m, key('s'))
	m, _ = update(t, m, key('s'))
	m, cmd := update(t, m, key('s'))
	assert.Nil(t, cmd, "the tick scheduled by the first start is still pending")
	assert.True(t, m.Ticking())
}

func TestChangedMsgArmsTickForRemoteStart(t *testing.T) {
	m, tr := newModel(t)
	_, err := tr.Start("")
	require.NoError(t, err)

	m, cmd := update(t, m, ChangedMsg{})
	assert.NotNil(t, cmd)
	assert.True(t, m.Ticking())
}

func TestPauseWhileIdleShowsError(t *testing.T) {
	m, _ := newModel(t)
	m, cmd := update(t, m, key('p'))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), tracker.ErrNoActiveEntry.Error())
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := update(t, m, key('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewShowsElapsed(t *testing.T) {
	m, _ := newModel(t)
	m, _ = update(t, m, key('s'))
	view := m.View()
	assert.Contains(t, view, "RUNNING")
	assert.Contains(t, view, "00:00:00")
}
