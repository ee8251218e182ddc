package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/rayedriasat/taskplanner/internal/config"
)

// SettingsPaneModel manages the settings form overlay.
type SettingsPaneModel struct {
	form        *huh.Form
	config      *config.PlannerConfig
	globalPath  string
	projectPath string
	width       int
	height      int
	visible     bool
	saved       bool
	err         error

	// Form field bindings (strings for Huh)
	saveTarget       string
	horizonDays      string
	splitCoverage    string
	overloadCoverage string
	databasePath     string
}

// NewSettingsPaneModel creates a new settings pane.
func NewSettingsPaneModel(cfg *config.PlannerConfig, globalPath, projectPath string) SettingsPaneModel {
	m := SettingsPaneModel{
		config:      cfg,
		globalPath:  globalPath,
		projectPath: projectPath,
		visible:     false,
		saved:       false,

		saveTarget:       "global",
		horizonDays:      strconv.Itoa(cfg.Scheduling.HorizonDays),
		splitCoverage:    strconv.FormatFloat(cfg.Scheduling.SplitCoverage, 'f', -1, 64),
		overloadCoverage: strconv.FormatFloat(cfg.Scheduling.OverloadCoverage, 'f', -1, 64),
		databasePath:     cfg.Database.Path,
	}

	m.buildForm()
	return m
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive whole number")
	}
	return nil
}

func validateFraction(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f > 1 {
		return fmt.Errorf("must be a fraction in (0, 1]")
	}
	return nil
}

// buildForm constructs the Huh form with all settings fields.
func (m *SettingsPaneModel) buildForm() {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("saveTarget").
				Title("Save To").
				Options(
					huh.NewOption("Global (~/.taskplanner/config.json)", "global"),
					huh.NewOption("Project (.taskplanner/config.json)", "project"),
				).
				Value(&m.saveTarget),
		).Title("Save Target"),

		huh.NewGroup(
			huh.NewInput().
				Key("horizonDays").
				Title("Scheduling Horizon (days)").
				Value(&m.horizonDays).
				Validate(validatePositiveInt).
				Placeholder("7"),

			huh.NewInput().
				Key("splitCoverage").
				Title("Split Coverage Bar").
				Description("Minimum fraction of a task coverable by fragments").
				Value(&m.splitCoverage).
				Validate(validateFraction).
				Placeholder("0.75"),

			huh.NewInput().
				Key("overloadCoverage").
				Title("Overload Coverage Bar").
				Description("Relaxed fraction used when the week is overloaded").
				Value(&m.overloadCoverage).
				Validate(validateFraction).
				Placeholder("0.5"),
		).Title("Scheduling"),

		huh.NewGroup(
			huh.NewInput().
				Key("databasePath").
				Title("Database Path").
				Value(&m.databasePath).
				Placeholder(".taskplanner/planner.db"),
		).Title("Storage"),
	)
}

// Init initializes the settings pane.
func (m SettingsPaneModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the settings pane.
func (m SettingsPaneModel) Update(msg tea.Msg) (SettingsPaneModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			// Cancel without saving
			m.visible = false
			m.saved = false
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.applyFormToConfig()

		targetPath := m.globalPath
		if m.saveTarget == "project" {
			targetPath = m.projectPath
		}

		if err := config.Save(m.config, targetPath); err != nil {
			m.err = err
			m.saved = false
		} else {
			m.saved = true
			m.err = nil
		}

		if m.saved {
			m.visible = false
		}
	}

	return m, cmd
}

// applyFormToConfig copies form field values back to the config struct.
// Values were validated by the form, so parse failures leave fields as-is.
func (m *SettingsPaneModel) applyFormToConfig() {
	if n, err := strconv.Atoi(m.horizonDays); err == nil {
		m.config.Scheduling.HorizonDays = n
	}
	if f, err := strconv.ParseFloat(m.splitCoverage, 64); err == nil {
		m.config.Scheduling.SplitCoverage = f
	}
	if f, err := strconv.ParseFloat(m.overloadCoverage, 64); err == nil {
		m.config.Scheduling.OverloadCoverage = f
	}
	if m.databasePath != "" {
		m.config.Database.Path = m.databasePath
	}
}

// View renders the settings pane.
func (m SettingsPaneModel) View() string {
	if !m.visible {
		return ""
	}

	var content string

	if m.saved && m.form.State == huh.StateCompleted {
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true).
			Render("✓ Settings saved successfully!")
	} else if m.err != nil {
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true).
			Render(fmt.Sprintf("✗ Error saving: %v", m.err))
	} else {
		content = m.form.View()
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(m.width - 4).
		Height(m.height - 4)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		Render("⚙ Settings")

	body := style.Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

// SetSize updates the dimensions of the settings pane.
func (m *SettingsPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil {
		m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// SetVisible shows or hides the settings pane.
func (m *SettingsPaneModel) SetVisible(v bool) {
	m.visible = v
	m.saved = false
	m.err = nil

	// Reset form state when showing
	if v && m.form != nil {
		m.buildForm()
	}
}

// IsVisible returns whether the settings pane is currently visible.
func (m SettingsPaneModel) IsVisible() bool {
	return m.visible
}
