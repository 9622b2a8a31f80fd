// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Brand color
var (
	primaryColor  = lipgloss.Color("#ff7300")
	subtleColor   = lipgloss.Color("#626262")
	successColor  = lipgloss.Color("#04B575")
	warningColor  = lipgloss.Color("#E5C07B")
	errorColor    = lipgloss.Color("#FF0000")
	idleTimeout   = 10 * time.Minute
	visibleLogLen = 5

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			MarginBottom(1)

	commitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	activeCommitStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	doneCommitStyle = lipgloss.NewStyle().
			Foreground(successColor)

	conflictCommitStyle = lipgloss.NewStyle().
				Foreground(warningColor)

	errorCommitStyle = lipgloss.NewStyle().
				Foreground(errorColor)
)

// Commit statuses shown by the model.
const (
	StatusMirrored   = "mirrored"
	StatusConflicted = "conflicted"
	StatusSkipped    = "skipped"
	StatusError      = "error"
)

// CommitRow is one discovered commit.
type CommitRow struct {
	SHA   string
	Title string
}

// CycleStartedMsg announces the commits a cycle will process.
type CycleStartedMsg struct {
	ID         string
	Checkpoint string
	Commits    []CommitRow
}

// CommitStatusMsg reports the outcome of one commit.
type CommitStatusMsg struct {
	SHA     string
	Status  string
	Message string
}

// ResultMsg indicates the final result.
type ResultMsg struct {
	Success bool
	Output  string
}

// Model for the TUI.
type Model struct {
	spinner    spinner.Model
	cycleID    string
	checkpoint string
	commits    []CommitRow
	status     map[string]string // sha -> status
	logs       []string
	started    bool
	quitting   bool
	err        error
	output     string
	statusChan <-chan tea.Msg
}

// NewModel creates a new TUI model fed from statusChan.
func NewModel(statusChan <-chan tea.Msg) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		spinner:    s,
		status:     make(map[string]string),
		statusChan: statusChan,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForActivity(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CycleStartedMsg:
		m.started = true
		m.cycleID = msg.ID
		m.checkpoint = msg.Checkpoint
		m.commits = msg.Commits
		m.log("cycle", fmt.Sprintf("%d commit(s) since %s", len(msg.Commits), short(msg.Checkpoint)))
		return m, m.waitForActivity()

	case CommitStatusMsg:
		m.status[msg.SHA] = msg.Status
		if msg.Message != "" {
			m.log(short(msg.SHA), msg.Message)
		}
		if msg.Status == StatusError {
			m.err = fmt.Errorf("commit %s failed: %s", short(msg.SHA), msg.Message)
		}
		return m, m.waitForActivity()

	case ResultMsg:
		m.output = msg.Output
		if !msg.Success && m.err == nil {
			m.err = fmt.Errorf("%s", msg.Output)
		}
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// Output returns the final result text once the program has quit.
func (m Model) Output() string {
	return m.output
}

// Err returns the failure recorded by the model, if any.
func (m Model) Err() error {
	return m.err
}

func (m *Model) log(scope, message string) {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s: %s", time.Now().Format("15:04:05"), scope, message))
}

func (m Model) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg, ok := <-m.statusChan:
			if !ok {
				return ResultMsg{Success: true}
			}
			return msg
		case <-time.After(idleTimeout):
			return ResultMsg{
				Success: false,
				Output:  "cycle timed out waiting for activity",
			}
		}
	}
}

// current is the index of the first commit without a status.
func (m Model) current() int {
	for i, c := range m.commits {
		if _, done := m.status[c.SHA]; !done {
			return i
		}
	}
	return -1
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Mirror-Bot Cycle"))
	s.WriteString("\n")
	if !m.started {
		s.WriteString(m.spinner.View() + " Reading checkpoint and discovering commits...\n")
	} else {
		s.WriteString(lipgloss.NewStyle().Foreground(subtleColor).Render(fmt.Sprintf("cycle %s  checkpoint %s", m.cycleID, short(m.checkpoint))))
		s.WriteString("\n\n")
	}

	active := m.current()
	for i, c := range m.commits {
		prefix := "  "
		style := commitStyle

		if i == active {
			prefix = m.spinner.View() + " "
			style = activeCommitStyle
		}

		switch m.status[c.SHA] {
		case StatusMirrored:
			prefix = "✓ "
			style = doneCommitStyle
		case StatusConflicted:
			prefix = "! "
			style = conflictCommitStyle
		case StatusError:
			prefix = "✗ "
			style = errorCommitStyle
		case StatusSkipped:
			prefix = "○ "
			style = commitStyle.Faint(true)
		}

		s.WriteString(style.Render(fmt.Sprintf("%s%s %s\n", prefix, short(c.SHA), c.Title)))
	}

	s.WriteString("\nLogs:\n")
	start := 0
	if len(m.logs) > visibleLogLen {
		start = len(m.logs) - visibleLogLen
	}
	for _, line := range m.logs[start:] {
		s.WriteString(lipgloss.NewStyle().Foreground(subtleColor).Render(line) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + errorCommitStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	s.WriteString(lipgloss.NewStyle().Foreground(subtleColor).Render("\nPress q to quit\n"))

	return s.String()
}

func short(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
