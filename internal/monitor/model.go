// Package monitor renders a live view of a running engine job from its
// decoded JSON progress stream.
package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"longdoc-trainer/internal/domain"
	"longdoc-trainer/internal/enginelog"
)

const maxRecentLines = 8

// RecordMsg delivers one decoded progress record to the model.
type RecordMsg enginelog.Record

// LineMsg delivers one raw engine output line to the model.
type LineMsg string

// DoneMsg signals that the engine process has exited.
type DoneMsg struct {
	ExitCode int
	Err      error
}

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	dim    lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
	border lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		value:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// Model is the bubbletea model for one supervised engine run.
type Model struct {
	cfg     domain.JobConfig
	cancel  func()
	spinner spinner.Model
	styles  styles

	rec        enginelog.Record
	hasRecord  bool
	lines      []string
	cancelling bool
	done       bool
	exitCode   int
	err        error
}

// New creates a monitor for the given job configuration. The cancel
// function is invoked when the user requests termination.
func New(cfg domain.JobConfig, cancel func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		cfg:     cfg,
		cancel:  cancel,
		spinner: sp,
		styles:  newStyles(),
	}
}

// Init starts the spinner tick loop.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles progress, completion, and key messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
			if m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
			return m, nil
		}

	case RecordMsg:
		m.rec = enginelog.Record(msg)
		m.hasRecord = true
		return m, nil

	case LineMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxRecentLines {
			m.lines = m.lines[len(m.lines)-maxRecentLines:]
		}
		return m, nil

	case DoneMsg:
		m.done = true
		m.exitCode = msg.ExitCode
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the job header, progress panel, and recent output.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("longdoc-trainer") + "  " + m.styles.dim.Render(string(m.cfg.Task)+" / "+m.cfg.Arch))
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if m.hasRecord {
		b.WriteString(m.styles.border.Render(m.progressPanel()))
		b.WriteString("\n")
	}

	if len(m.lines) > 0 {
		b.WriteString(m.styles.label.Render("recent output") + "\n")
		for _, line := range m.lines {
			b.WriteString(m.styles.dim.Render(truncate(line, 120)) + "\n")
		}
	}

	if !m.done {
		b.WriteString("\n" + m.styles.dim.Render("q to cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

// statusLine renders the current lifecycle state.
func (m Model) statusLine() string {
	switch {
	case m.done && m.err == nil:
		return m.styles.ok.Render("✓ engine finished (exit 0)")
	case m.done:
		return m.styles.fail.Render(fmt.Sprintf("✗ engine exited with code %d", m.exitCode))
	case m.cancelling:
		return m.spinner.View() + m.styles.fail.Render(" cancelling, waiting for the engine to stop")
	default:
		return m.spinner.View() + " running"
	}
}

// progressPanel renders the latest decoded training record.
func (m Model) progressPanel() string {
	rows := []string{
		m.kv("epoch", fmt.Sprintf("%d", m.rec.Epoch)),
		m.kv("updates", m.updatesCell()),
		m.kv("loss", fmt.Sprintf("%.3f", m.rec.Loss)),
		m.kv("lr", fmt.Sprintf("%.3g", m.rec.LR)),
	}
	if m.rec.GradNorm > 0 {
		rows = append(rows, m.kv("gnorm", fmt.Sprintf("%.3f", m.rec.GradNorm)))
	}
	if m.rec.WPS > 0 {
		rows = append(rows, m.kv("wps", fmt.Sprintf("%.0f", m.rec.WPS)))
	}
	return strings.Join(rows, "\n")
}

// updatesCell shows progress against the configured update budget.
func (m Model) updatesCell() string {
	if m.cfg.TotalUpdates <= 0 {
		return fmt.Sprintf("%d", m.rec.NumUpdates)
	}
	pct := float64(m.rec.NumUpdates) / float64(m.cfg.TotalUpdates) * 100
	return fmt.Sprintf("%d / %d (%.1f%%)", m.rec.NumUpdates, m.cfg.TotalUpdates, pct)
}

// kv renders one aligned label/value row.
func (m Model) kv(label, value string) string {
	return m.styles.label.Render(fmt.Sprintf("%-8s", label)) + " " + m.styles.value.Render(value)
}

// truncate shortens long engine lines for the recent-output panel.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
