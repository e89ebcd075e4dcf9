package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/chladni/internal/ui"
)

type startupPhase uint8

const (
	phaseBrowse startupPhase = iota
	phaseOpening
)

var (
	startupStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	startupHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)

type startupResolvedMsg struct {
	path string
	err  error
}

// startupModel lets the user pick a document and loads it, returning to
// the list with the error shown when the file cannot be opened.
type startupModel struct {
	browser ui.BrowserModel
	open    func(path string) error
	phase   startupPhase
	errMsg  string
	pending string
	opened  string
	width   int
	height  int
	spinner spinner.Model
}

func newStartupModel(open func(path string) error) startupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	return startupModel{
		browser: ui.NewEmbeddedBrowser(),
		open:    open,
		phase:   phaseBrowse,
		spinner: s,
	}
}

// Result reports the opened document, if any.
func (m startupModel) Result() (string, bool) {
	return m.opened, m.opened != ""
}

func (m startupModel) Init() tea.Cmd {
	return tea.Batch(m.browser.Init(), m.spinner.Tick)
}

func (m startupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.phase == phaseBrowse {
			return m.updateBrowser(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.phase == phaseOpening {
			return m, cmd
		}
		return m, nil

	case ui.BrowserCancelledMsg:
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case ui.BrowserSelectedMsg:
		m.phase = phaseOpening
		m.errMsg = ""
		m.pending = msg.Path
		return m, tea.Batch(m.spinner.Tick, openDocumentCmd(msg.Path, m.open))

	case startupResolvedMsg:
		if msg.err != nil {
			m.phase = phaseBrowse
			m.errMsg = msg.err.Error()
			m.pending = ""
			return m, nil
		}
		m.opened = msg.path
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case tea.KeyMsg:
		// Loading cannot be interrupted; only ctrl+c leaves while it runs.
		if m.phase == phaseOpening {
			if msg.String() == "ctrl+c" {
				return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
			}
			return m, nil
		}
	}

	if m.phase == phaseBrowse {
		return m.updateBrowser(msg)
	}
	return m, nil
}

func (m startupModel) updateBrowser(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.browser.Update(msg)
	if browser, ok := model.(ui.BrowserModel); ok {
		m.browser = browser
	}
	return m, cmd
}

func openDocumentCmd(path string, open func(string) error) tea.Cmd {
	return func() tea.Msg {
		return startupResolvedMsg{path: path, err: open(path)}
	}
}

func (m startupModel) View() string {
	if m.phase == phaseBrowse {
		if m.browser.HasError() {
			return m.browser.View()
		}
		if m.browser.Empty() && m.errMsg == "" {
			return "\n  " + ui.Header() + "\n\n  " +
				startupStatusStyle.Render("No .chl documents in this directory.") + "\n\n  " +
				startupHelpStyle.Render("q quit") + "\n"
		}
		if m.errMsg == "" {
			return m.browser.View()
		}
		return "\n  " + ui.Header() + "\n\n  " + ui.ErrorStyle.Render(m.errMsg) + "\n\n" + indentBlock(m.browser.View(), "  ")
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(ui.Header())
	b.WriteString("\n\n  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(startupStatusStyle.Render("Opening " + m.pending + "..."))
	b.WriteString("\n")
	return b.String()
}

func indentBlock(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
