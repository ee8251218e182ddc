package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rayedriasat/taskplanner/internal/events"
)

// SummaryPaneModel shows the latest run's outcome figures.
type SummaryPaneModel struct {
	haveRun         bool
	scheduled       int
	unscheduled     int
	scheduledHours  float64
	utilization     float64
	overloaded      bool
	overloadRatio   float64
	excessHours     float64
	recommendations []string
	width           int
	height          int
	focused         bool
}

// NewSummaryPaneModel creates a new summary pane model.
func NewSummaryPaneModel() SummaryPaneModel {
	return SummaryPaneModel{}
}

// Update handles messages for the summary pane.
func (m SummaryPaneModel) Update(msg tea.Msg) (SummaryPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case events.RunStartedEvent:
		// Overload data belongs to the previous run.
		m.overloaded = false
		m.overloadRatio = 0
		m.excessHours = 0
		m.recommendations = nil

	case events.OverloadDetectedEvent:
		m.overloaded = true
		m.overloadRatio = msg.Ratio
		m.excessHours = msg.ExcessHours
		m.recommendations = msg.Recommendations

	case events.RunCompletedEvent:
		m.haveRun = true
		m.scheduled = msg.ScheduledCount
		m.unscheduled = msg.UnscheduledCount
		m.scheduledHours = msg.ScheduledHours
		m.utilization = msg.UtilizationRate
	}

	return m, nil
}

// View renders the summary pane.
func (m SummaryPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := StyleTitle.Render("Run Summary")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)))
	b.WriteString("\n\n")

	if !m.haveRun {
		b.WriteString(StyleMuted.Render("No runs yet.\n"))
	} else {
		b.WriteString(fmt.Sprintf("Scheduled:   %s\n", StyleScheduled.Render(fmt.Sprintf("%d", m.scheduled))))
		b.WriteString(fmt.Sprintf("Unscheduled: %s\n", StyleUnscheduled.Render(fmt.Sprintf("%d", m.unscheduled))))
		b.WriteString(fmt.Sprintf("Hours:       %.1f\n", m.scheduledHours))
		b.WriteString(fmt.Sprintf("Utilization: %.0f%%\n", m.utilization))

		// Utilization bar
		barWidth := min(m.width-4, 40)
		filled := int(m.utilization / 100 * float64(barWidth))
		filled = max(0, min(filled, barWidth))
		bar := StyleScheduled.Render(strings.Repeat("=", filled))
		bar += StyleMuted.Render(strings.Repeat(".", barWidth-filled))
		b.WriteString(fmt.Sprintf("[%s]\n", bar))
	}

	if m.overloaded {
		b.WriteString("\n")
		b.WriteString(StyleOverload.Render(fmt.Sprintf("OVERLOADED %.1fx (%.1fh excess)", m.overloadRatio, m.excessHours)))
		b.WriteString("\n")
		for _, rec := range m.recommendations {
			b.WriteString(StyleMuted.Render("- " + rec))
			b.WriteString("\n")
		}
	}

	content := b.String()

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

// SetSize updates the pane dimensions.
func (m *SummaryPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *SummaryPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
