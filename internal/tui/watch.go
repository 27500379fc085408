// Package tui renders the live timer view for `sa3aty watch`.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

// TickInterval is the refresh period of the running clock.
const TickInterval = time.Second

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 1).
			MarginBottom(1)

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

type tickMsg time.Time

// ChangedMsg tells the model the tracker changed outside of a key press,
// e.g. from a remote snapshot.
type ChangedMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the watch screen. At most one tick is in flight, and a tick is
// only scheduled while the timer is running.
type Model struct {
	tr        *tracker.Tracker
	projectID string
	ticking   bool
	err       error
	width     int
}

// New builds the model; projectID is used when `s` starts a timer.
func New(tr *tracker.Tracker, projectID string) Model {
	return Model{
		tr:        tr,
		projectID: projectID,
		ticking:   tr.TimerState() == model.StateRunning,
	}
}

func (m Model) Init() tea.Cmd {
	if m.ticking {
		return tickCmd()
	}
	return nil
}

// Ticking reports whether a tick is scheduled.
func (m Model) Ticking() bool {
	return m.ticking
}

// rearm schedules a tick if the timer runs and none is pending.
func (m Model) rearm() (Model, tea.Cmd) {
	if m.ticking || m.tr.TimerState() != model.StateRunning {
		return m, nil
	}
	m.ticking = true
	return m, tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.err = m.toggleRun()
			return m.rearm()
		case "p":
			m.err = m.togglePause()
			return m.rearm()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case ChangedMsg:
		return m.rearm()
	case tickMsg:
		if m.tr.TimerState() != model.StateRunning {
			m.ticking = false
			return m, nil
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m Model) toggleRun() error {
	var err error
	if m.tr.TimerState() == model.StateIdle {
		_, err = m.tr.Start(m.projectID)
	} else {
		_, err = m.tr.Stop()
	}
	return err
}

func (m Model) togglePause() error {
	var err error
	switch m.tr.TimerState() {
	case model.StateRunning:
		_, err = m.tr.Pause()
	case model.StatePaused:
		_, err = m.tr.Resume()
	default:
		err = tracker.ErrNoActiveEntry
	}
	return err
}

func (m Model) View() string {
	now := m.tr.Now()
	header := headerStyle.Render(fmt.Sprintf("sa3aty - %s", now.Format("Mon Jan 2, 15:04")))

	var b strings.Builder
	state := m.tr.TimerState()
	switch state {
	case model.StateRunning:
		b.WriteString(runningStyle.Render("● RUNNING"))
	case model.StatePaused:
		b.WriteString(pausedStyle.Render("❚❚ PAUSED"))
	default:
		b.WriteString(idleStyle.Render("○ IDLE"))
	}
	b.WriteString("\n\n")

	if e, ok := m.tr.ActiveEntry(); ok {
		name := m.tr.ProjectName(e)
		if name == "" {
			name = "(no project)"
		}
		fmt.Fprintf(&b, "Project: %s\n", name)
		fmt.Fprintf(&b, "Since:   %s\n", e.StartAt.Local().Format("15:04"))
		fmt.Fprintf(&b, "Elapsed: %s\n", timecalc.FormatDurationHHMMSS(m.tr.ElapsedSeconds()))
	} else {
		fmt.Fprintf(&b, "Elapsed: %s\n", timecalc.FormatDurationHHMMSS(0))
	}
	fmt.Fprintf(&b, "Today:   %s", timecalc.FormatMinutes(m.tr.TodayTotalMinutes()))

	box := boxStyle.Render(b.String())
	parts := []string{header, box}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	parts = append(parts, footerStyle.Render("s start/stop • p pause/resume • q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
