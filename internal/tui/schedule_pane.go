package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rayedriasat/taskplanner/internal/events"
)

// taskEntry is one task's placement as reported by the event stream.
type taskEntry struct {
	TaskID  string
	Title   string
	Start   time.Time
	End     time.Time
	Outcome string // scheduled, scheduled_split, ..., or "unscheduled"
	Detail  []string
}

// SchedulePaneModel shows the current plan: a task list plus a detail
// viewport for the selected task.
type SchedulePaneModel struct {
	entries     map[string]*taskEntry
	entryOrder  []string // insertion order for display
	selectedIdx int
	viewport    viewport.Model
	width       int
	height      int
	focused     bool
}

// NewSchedulePaneModel creates a new schedule pane model.
func NewSchedulePaneModel() SchedulePaneModel {
	return SchedulePaneModel{
		entries:  make(map[string]*taskEntry),
		viewport: viewport.New(0, 0),
	}
}

// Update handles messages for the schedule pane.
func (m SchedulePaneModel) Update(msg tea.Msg) (SchedulePaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()

	case tea.KeyMsg:
		if !m.focused {
			break
		}

		switch msg.String() {
		case KeyJ, KeyDown:
			if m.selectedIdx < len(m.entryOrder)-1 {
				m.selectedIdx++
				m.updateViewportContent()
			}
		case KeyK, KeyUp:
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.updateViewportContent()
			}
		default:
			m.viewport, cmd = m.viewport.Update(msg)
		}

	case events.RunStartedEvent:
		// A new plan is coming; the old placements are stale.
		m.entries = make(map[string]*taskEntry)
		m.entryOrder = nil
		m.selectedIdx = 0
		m.updateViewportContent()

	case events.TaskScheduledEvent:
		entry := m.upsert(msg.ID, msg.Title)
		entry.Start = msg.Start
		entry.End = msg.End
		entry.Outcome = msg.Outcome
		entry.Detail = []string{
			fmt.Sprintf("%s - %s", msg.Start.Format("Mon 15:04"), msg.End.Format("Mon 15:04")),
			fmt.Sprintf("outcome: %s", msg.Outcome),
		}
		if m.selectedTaskID() == msg.ID {
			m.updateViewportContent()
		}

	case events.TaskUnscheduledEvent:
		entry := m.upsert(msg.ID, msg.Title)
		entry.Outcome = "unscheduled"
		entry.Detail = []string{"not placed", msg.Reason}
		if m.selectedTaskID() == msg.ID {
			m.updateViewportContent()
		}
	}

	return m, cmd
}

// upsert returns the entry for a task, adding it to the display order the
// first time it is seen.
func (m *SchedulePaneModel) upsert(taskID, title string) *taskEntry {
	if entry, exists := m.entries[taskID]; exists {
		return entry
	}
	entry := &taskEntry{TaskID: taskID, Title: title}
	m.entries[taskID] = entry
	m.entryOrder = append(m.entryOrder, taskID)
	if len(m.entryOrder) == 1 {
		m.selectedIdx = 0
	}
	return entry
}

// View renders the schedule pane.
func (m SchedulePaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	listWidth := 28
	viewportWidth := m.width - listWidth - 4 // account for borders and padding

	listContent := m.renderTaskList(listWidth)
	viewportContent := m.viewport.View()

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		listContent,
		lipgloss.NewStyle().
			Width(viewportWidth).
			Height(m.height-2).
			Render(viewportContent),
	)

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

// renderTaskList renders the task list column.
func (m SchedulePaneModel) renderTaskList(width int) string {
	var b strings.Builder

	title := StyleTitle.Render("This Week")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", min(width, lipgloss.Width(title))))
	b.WriteString("\n\n")

	if len(m.entryOrder) == 0 {
		b.WriteString(StyleMuted.Render("No plan yet. Press o to optimize."))
	} else {
		for i, taskID := range m.entryOrder {
			entry := m.entries[taskID]
			icon := outcomeIcon(entry.Outcome)
			name := entry.Title
			if len(name) > width-6 {
				name = name[:width-9] + "..."
			}

			line := fmt.Sprintf("%s %s", icon, name)
			if i == m.selectedIdx {
				line = lipgloss.NewStyle().
					Background(lipgloss.Color("62")).
					Foreground(lipgloss.Color("0")).
					Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(m.height - 2).
		Render(b.String())
}

// outcomeIcon returns a styled placement indicator.
func outcomeIcon(outcome string) string {
	switch outcome {
	case "scheduled":
		return StyleScheduled.Render("✓")
	case "scheduled_split", "scheduled_partial", "scheduled_overload":
		return StyleSplit.Render("~")
	case "unscheduled":
		return StyleUnscheduled.Render("✗")
	default:
		return StyleMuted.Render("○")
	}
}

// selectedTaskID returns the task ID of the currently selected entry.
func (m SchedulePaneModel) selectedTaskID() string {
	if m.selectedIdx >= 0 && m.selectedIdx < len(m.entryOrder) {
		return m.entryOrder[m.selectedIdx]
	}
	return ""
}

// updateViewportContent updates the viewport with the selected task's detail.
func (m *SchedulePaneModel) updateViewportContent() {
	taskID := m.selectedTaskID()
	if taskID == "" {
		m.viewport.SetContent("Select a task to see its placement.")
		return
	}

	entry, exists := m.entries[taskID]
	if !exists {
		m.viewport.SetContent("Select a task to see its placement.")
		return
	}

	lines := append([]string{entry.Title, ""}, entry.Detail...)
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoTop()
}

// resizeViewport resizes the viewport based on pane dimensions.
func (m *SchedulePaneModel) resizeViewport() {
	listWidth := 28
	viewportWidth := m.width - listWidth - 4
	viewportHeight := m.height - 4 // account for borders

	if viewportWidth < 10 {
		viewportWidth = 10
	}
	if viewportHeight < 5 {
		viewportHeight = 5
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight
}

// SetSize updates the pane dimensions.
func (m *SchedulePaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resizeViewport()
}

// SetFocused updates the focus state.
func (m *SchedulePaneModel) SetFocused(focused bool) {
	m.focused = focused
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
