package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(canceling bool) string {
	if canceling {
		return "waiting for the current row to finish"
	}
	return "q cancel"
}
