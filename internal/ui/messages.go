package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// animFPS drives the progress bar spring.
const animFPS = 30

type frameMsg time.Time

type computeProgressMsg struct {
	done  int
	total int
}

type computeDoneMsg struct {
	peak      float32
	completed bool
	elapsed   time.Duration
}

func frameCmd() tea.Cmd {
	return tea.Tick(time.Second/animFPS, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
