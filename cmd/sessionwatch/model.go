package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/speakbright/agent-core/core/session"
)

const maxLogLines = 200

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	connectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disconnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	checkpointStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	endingStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	endedStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	agentStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("249"))
	faintStyle      = lipgloss.NewStyle().Faint(true)
)

type model struct {
	room string
	feed <-chan tea.Msg

	spinner   spinner.Model
	connected bool
	lastErr   error

	status    session.Status
	elapsed   int
	remaining int
	total     int

	log   []string
	width int
}

func newModel(room string, feed <-chan tea.Msg) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return model{
		room:    room,
		feed:    feed,
		spinner: s,
		status:  session.StatusInProgress,
		width:   80,
	}
}

func waitForFeed(feed <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-feed }
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForFeed(m.feed))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectedMsg:
		m.connected = true
		m.lastErr = nil
		return m, waitForFeed(m.feed)

	case disconnectedMsg:
		m.connected = false
		m.lastErr = msg.err
		return m, waitForFeed(m.feed)

	case sessionEventMsg:
		m.applyEvent(msg.event)
		return m, waitForFeed(m.feed)

	case transcriptMsg:
		style := userStyle
		speaker := "user"
		if msg.transcript.Role == "agent" {
			style = agentStyle
			speaker = "agent"
		}
		m.appendLog(style.Render(speaker+": ") + msg.transcript.Text)
		return m, waitForFeed(m.feed)
	}

	return m, nil
}

func (m *model) applyEvent(event session.Event) {
	m.status = event.Status

	switch event.Type {
	case session.EventTimeCheckpoint:
		metadata := checkpointMetadata(event.Metadata)
		m.elapsed = metadata.ElapsedSeconds
		m.remaining = metadata.RemainingSeconds
		m.total = metadata.TotalDuration
		label := fmt.Sprintf("checkpoint %d at %s (%s left)",
			metadata.CheckpointIndex+1,
			formatSeconds(metadata.ElapsedSeconds),
			formatSeconds(metadata.RemainingSeconds),
		)
		if metadata.IsFinal {
			label += " [final]"
		}
		m.appendLog(checkpointStyle.Render(label))

	case session.EventSessionStatus:
		line := "session " + string(event.Status)
		if event.Reason != "" {
			line += " (" + string(event.Reason) + ")"
		}
		switch event.Status {
		case session.StatusEnding:
			m.appendLog(endingStyle.Render(line))
		case session.StatusEnded:
			m.appendLog(endedStyle.Render(line))
		default:
			m.appendLog(line)
		}
	}
}

func (m *model) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sessionwatch") + "  " + faintStyle.Render("room "+m.room) + "\n")

	if m.connected {
		b.WriteString(connectedStyle.Render("● connected"))
	} else {
		b.WriteString(m.spinner.View() + disconnStyle.Render(" connecting..."))
		if m.lastErr != nil {
			b.WriteString(faintStyle.Render("  " + m.lastErr.Error()))
		}
	}
	b.WriteString("\n\n")

	if m.total > 0 {
		b.WriteString(fmt.Sprintf("%s / %s elapsed, %s\n\n",
			formatSeconds(m.elapsed),
			formatSeconds(m.total),
			statusLabel(m.status),
		))
	} else {
		b.WriteString(statusLabel(m.status) + "\n\n")
	}

	width := m.width
	if width < 20 {
		width = 20
	}
	for _, line := range m.log {
		b.WriteString(wordwrap.String(line, width) + "\n")
	}

	b.WriteString("\n" + faintStyle.Render("q to quit"))
	return b.String()
}

func statusLabel(status session.Status) string {
	switch status {
	case session.StatusEnding:
		return endingStyle.Render("ending")
	case session.StatusEnded:
		return endedStyle.Render("ended")
	default:
		return "in progress"
	}
}

func formatSeconds(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// checkpointMetadata re-decodes the event's loosely typed metadata block.
func checkpointMetadata(metadata any) session.CheckpointMetadata {
	var decoded session.CheckpointMetadata
	raw, err := json.Marshal(metadata)
	if err != nil {
		return decoded
	}
	_ = json.Unmarshal(raw, &decoded)
	return decoded
}
