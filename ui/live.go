// Package ui is the interactive terminal screen: Start/Stop, Reset and
// Save controls over a live chart of the rolling series.
package ui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"motion-logger/controller"
	"motion-logger/models"
	"motion-logger/views"
)

var (
	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 3).
			MarginRight(2)

	startStyle = buttonStyle.Background(lipgloss.Color("#2E7D32"))
	stopStyle  = buttonStyle.Background(lipgloss.Color("#C62828"))
	resetStyle = buttonStyle.Background(lipgloss.Color("#EF6C00"))
	saveStyle  = buttonStyle.Background(lipgloss.Color("#1565C0"))

	chartStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1565C0")).
			Foreground(lipgloss.Color("#42A5F5")).
			Padding(0, 1)

	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	statusStyle = lipgloss.NewStyle().Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E53935"))
)

type snapshotMsg models.Snapshot

type closedMsg struct{}

// Model is the bubbletea model of the live screen.
type Model struct {
	sampler  *controller.Sampler
	exporter *controller.Exporter
	updates  <-chan models.Snapshot

	snap   models.Snapshot
	status string
	err    bool
	width  int
}

// New builds the screen over a sampler, refreshing from updates (usually
// a Monitor's Out channel).
func New(s *controller.Sampler, e *controller.Exporter, updates <-chan models.Snapshot) Model {
	return Model{
		sampler:  s,
		exporter: e,
		updates:  updates,
		snap:     s.Snapshot(),
		width:    80,
	}
}

func waitForSnapshot(ch <-chan models.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case snapshotMsg:
		m.snap = models.Snapshot(msg)
		return m, waitForSnapshot(m.updates)
	case closedMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "enter":
			m.setResult(m.sampler.Toggle(), "")
		case "r":
			m.sampler.Reset()
			m.setResult(nil, "cleared")
		case "s":
			path, err := m.exporter.Save()
			m.setResult(err, "saved to "+path)
		}
		m.snap = m.sampler.Snapshot()
	}
	return m, nil
}

func (m *Model) setResult(err error, ok string) {
	switch {
	case errors.Is(err, controller.ErrSensorUnavailable):
		m.status, m.err = "no accelerometer available on this device", true
	case err != nil:
		m.status, m.err = err.Error(), true
	default:
		m.status, m.err = ok, false
	}
}

func (m Model) View() string {
	var sb strings.Builder

	toggle := startStyle.Render("Start")
	if m.snap.Measuring {
		toggle = stopStyle.Render("Stop")
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		toggle, resetStyle.Render("Reset"), saveStyle.Render("Save")))
	sb.WriteString("\n\n")

	sb.WriteString(m.chart())
	sb.WriteString("\n")

	sb.WriteString(axisStyle.Render(m.summary()))
	sb.WriteString("\n")
	if m.status != "" {
		style := statusStyle
		if m.err {
			style = errorStyle
		}
		sb.WriteString(style.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(axisStyle.Render("space start/stop · r reset · s save · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

const (
	chartRows   = 8
	labelWidth  = 9
	xLabelEvery = 5 * time.Second
)

// chart plots the newest samples that fit the screen, with value ticks on
// the left and a time tick every five seconds underneath. All of them are
// scaled over the same visible tail.
func (m Model) chart() string {
	if m.snap.Len() == 0 {
		return chartStyle.Render(axisStyle.Render("no samples"))
	}
	tail := views.Tail(m.snap.Series, max(m.width-labelWidth-8, 10))
	bottom := float64(chartRows - 1)

	grid := make([][]rune, chartRows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", len(tail)))
	}
	pts := views.Polyline(tail, float64(len(tail)-1), bottom)
	if len(pts) == 0 {
		pts = []views.Point{{X: 0, Y: bottom / 2}}
	}
	for _, p := range pts {
		grid[int(math.Round(p.Y))][int(math.Round(p.X))] = '•'
	}

	ticks := make([]string, chartRows)
	for _, l := range views.YAxisLabels(tail, bottom) {
		if r := int(math.Round(l.Pos)); ticks[r] == "" {
			ticks[r] = l.Text + " g"
		}
	}

	lines := make([]string, 0, chartRows+1)
	for r, row := range grid {
		margin := fmt.Sprintf("%*s ┤", labelWidth-2, ticks[r])
		lines = append(lines, axisStyle.Render(margin)+string(row))
	}
	lines = append(lines, axisStyle.Render(strings.Repeat(" ", labelWidth)+timeAxis(tail)))
	return chartStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// timeAxis lays the time ticks of tail out under their columns, dropping
// any that would overlap the previous one.
func timeAxis(tail []models.Sample) string {
	row := []rune(strings.Repeat(" ", len(tail)))
	next := 0
	for _, l := range views.XAxisLabels(tail, xLabelEvery) {
		col := int(l.Pos)
		text := []rune(l.Text)
		if col < next || col+len(text) > len(row) {
			continue
		}
		copy(row[col:], text)
		next = col + len(text) + 1
	}
	return string(row)
}

func (m Model) summary() string {
	var elapsed time.Duration
	if !m.snap.StartTime.IsZero() && m.snap.Len() > 0 {
		elapsed = m.snap.Series[m.snap.Len()-1].Timestamp.Sub(m.snap.StartTime)
	}
	return fmt.Sprintf("samples %d · window %s · elapsed %s",
		m.snap.Len(), m.snap.Span().Truncate(100*time.Millisecond), models.FormatElapsed(elapsed))
}
