package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rayedriasat/taskplanner/internal/config"
	"github.com/rayedriasat/taskplanner/internal/events"
	"github.com/rayedriasat/taskplanner/internal/planner"
)

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneSchedule PaneID = iota
	PaneSummary
)

// actionDoneMsg reports the outcome of a service action (optimize, undo, ...).
type actionDoneMsg struct {
	action string
	err    error
}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	svc               *planner.Service
	userID            string
	schedulePane      SchedulePaneModel
	summaryPane       SummaryPaneModel
	settingsPane      SettingsPaneModel
	focusedPane       PaneID
	eventSub          <-chan events.Event
	width             int
	height            int
	quitting          bool
	showSettings      bool
	status            string
	config            *config.PlannerConfig
	globalConfigPath  string
	projectConfigPath string
}

// New creates a new TUI model.
// It subscribes to all events from the event bus using SubscribeAll.
func New(svc *planner.Service, userID string, eventBus *events.EventBus, cfg *config.PlannerConfig, globalPath, projectPath string) Model {
	return Model{
		svc:               svc,
		userID:            userID,
		schedulePane:      NewSchedulePaneModel(),
		summaryPane:       NewSummaryPaneModel(),
		settingsPane:      NewSettingsPaneModel(cfg, globalPath, projectPath),
		focusedPane:       PaneSchedule,
		eventSub:          eventBus.SubscribeAll(256),
		showSettings:      false,
		config:            cfg,
		globalConfigPath:  globalPath,
		projectConfigPath: projectPath,
	}
}

// Init initializes the model and returns the initial command.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.eventSub)
}

// waitForEvent returns a command that waits for the next event from the event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

// optimizeCmd runs a full optimization pass in the background. The panes
// pick up the plan through the event stream.
func (m Model) optimizeCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.svc.OptimizeSchedule(context.Background(), m.userID)
		return actionDoneMsg{action: "optimize", err: err}
	}
}

// rescheduleCmd clears the week and rebuilds it.
func (m Model) rescheduleCmd() tea.Cmd {
	return func() tea.Msg {
		_, _, err := m.svc.RescheduleWeek(context.Background(), m.userID)
		return actionDoneMsg{action: "reschedule", err: err}
	}
}

// undoCmd rolls back the last optimization run.
func (m Model) undoCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.svc.UndoLastOptimization(context.Background(), m.userID)
		return actionDoneMsg{action: "undo", err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If settings panel is open, route all keys to it (modal behavior)
		if m.showSettings {
			switch msg.String() {
			case KeySettings, "esc":
				m.showSettings = false
				m.settingsPane.SetVisible(false)
			default:
				var cmd tea.Cmd
				m.settingsPane, cmd = m.settingsPane.Update(msg)
				cmds = append(cmds, cmd)

				// Check if settings pane closed itself (after save)
				if !m.settingsPane.IsVisible() {
					m.showSettings = false
				}
			}
			return m, tea.Batch(cmds...)
		}

		switch msg.String() {
		case KeyQuit, KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case KeyOptimize:
			m.status = "Optimizing..."
			cmds = append(cmds, m.optimizeCmd())

		case KeyReschedule:
			m.status = "Rescheduling week..."
			cmds = append(cmds, m.rescheduleCmd())

		case KeyUndo:
			m.status = "Undoing last run..."
			cmds = append(cmds, m.undoCmd())

		case KeySettings:
			m.showSettings = true
			m.settingsPane.SetVisible(true)
			cmds = append(cmds, m.settingsPane.Init())

		case KeyTab:
			m.focusedPane = (m.focusedPane + 1) % 2
			m.updateFocusStates()

		case KeyShiftTab:
			m.focusedPane = (m.focusedPane + 1) % 2 // two panes: forward == backward
			m.updateFocusStates()

		case KeyPane1:
			m.focusedPane = PaneSchedule
			m.updateFocusStates()

		case KeyPane2:
			m.focusedPane = PaneSummary
			m.updateFocusStates()

		default:
			// Delegate to focused pane
			switch m.focusedPane {
			case PaneSchedule:
				var cmd tea.Cmd
				m.schedulePane, cmd = m.schedulePane.Update(msg)
				cmds = append(cmds, cmd)
			case PaneSummary:
				var cmd tea.Cmd
				m.summaryPane, cmd = m.summaryPane.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()
		m.settingsPane.SetSize(msg.Width, msg.Height)

	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = fmt.Sprintf("%s done", msg.action)
		}

	case events.RunStartedEvent:
		// Both panes reset on a new run.
		var cmd tea.Cmd
		m.schedulePane, cmd = m.schedulePane.Update(msg)
		cmds = append(cmds, cmd)
		m.summaryPane, cmd = m.summaryPane.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.TaskScheduledEvent, events.TaskUnscheduledEvent:
		var cmd tea.Cmd
		m.schedulePane, cmd = m.schedulePane.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.RunCompletedEvent, events.OverloadDetectedEvent:
		var cmd tea.Cmd
		m.summaryPane, cmd = m.summaryPane.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.RunUndoneEvent:
		m.status = fmt.Sprintf("Restored %d tasks", msg.RestoredCount)
		cmds = append(cmds, waitForEvent(m.eventSub))
	}

	return m, tea.Batch(cmds...)
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showSettings {
		return m.settingsPane.View()
	}

	leftPane := m.schedulePane.View()
	rightPane := m.summaryPane.View()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	statusLine := HelpView()
	if m.status != "" {
		statusLine = StyleHelp.Render(m.status) + "  " + statusLine
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusLine)
}

// computeLayout calculates pane dimensions and updates all child models.
func (m *Model) computeLayout() {
	leftWidth := (m.width * 60) / 100
	rightWidth := m.width - leftWidth
	availableHeight := m.height - 1 // reserve 1 line for status bar

	m.schedulePane.SetSize(leftWidth, availableHeight)
	m.summaryPane.SetSize(rightWidth, availableHeight)

	m.updateFocusStates()
}

// updateFocusStates updates the focus state of all panes.
func (m *Model) updateFocusStates() {
	m.schedulePane.SetFocused(m.focusedPane == PaneSchedule)
	m.summaryPane.SetFocused(m.focusedPane == PaneSummary)
}
