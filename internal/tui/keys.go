package tui

// Keybinding constants
const (
	KeyTab        = "tab"
	KeyShiftTab   = "shift+tab"
	KeyQuit       = "q"
	KeyCtrlC      = "ctrl+c"
	KeyPane1      = "1"
	KeyPane2      = "2"
	KeyUp         = "up"
	KeyDown       = "down"
	KeyJ          = "j"
	KeyK          = "k"
	KeyOptimize   = "o"
	KeyReschedule = "r"
	KeyUndo       = "u"
	KeySettings   = "s"
)

// HelpView returns a one-line help bar with common keybindings.
func HelpView() string {
	return StyleHelp.Render("o: optimize | r: reschedule week | u: undo | Tab: cycle focus | j/k: scroll | s: settings | q: quit")
}
