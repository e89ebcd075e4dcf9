package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/chladni/internal/chl"
	"github.com/olivier-w/chladni/internal/util"
)

// BrowserResult holds the outcome of the file browser.
type BrowserResult struct {
	Path      string
	Cancelled bool
}

// BrowserSelectedMsg is emitted by an embedded browser when a document is chosen.
type BrowserSelectedMsg struct {
	Path string
}

// BrowserCancelledMsg is emitted by an embedded browser on quit.
type BrowserCancelledMsg struct{}

type fileItem struct {
	name string
	size int64
}

func (i fileItem) Title() string       { return strings.TrimSuffix(i.name, chl.Ext) }
func (i fileItem) Description() string { return util.FormatSize(i.size) }
func (i fileItem) FilterValue() string { return i.name }

// BrowserModel is the Bubbletea model listing documents in the working directory.
type BrowserModel struct {
	list     list.Model
	embedded bool
	result   *BrowserResult
	err      error
}

// NewBrowser creates a standalone browser that quits once a choice is made.
func NewBrowser() BrowserModel {
	return newBrowser(false)
}

// NewEmbeddedBrowser creates a browser that reports choices as messages
// and leaves quitting to its parent model.
func NewEmbeddedBrowser() BrowserModel {
	return newBrowser(true)
}

func newBrowser(embedded bool) BrowserModel {
	entries, err := os.ReadDir(".")
	if err != nil {
		return BrowserModel{embedded: embedded, err: fmt.Errorf("cannot read directory: %w", err)}
	}

	var items []list.Item
	for _, e := range entries {
		if e.IsDir() || !chl.IsDocumentPath(e.Name()) {
			continue
		}
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		items = append(items, fileItem{name: e.Name(), size: size})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(items, delegate, 80, 20)
	l.Title = AppName
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("document", "documents")
	l.Styles.Title = headerStyle

	return BrowserModel{list: l, embedded: embedded}
}

// HasError returns true if the browser could not be initialized.
func (m BrowserModel) HasError() bool {
	return m.err != nil
}

// Error returns the initialization error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

// Empty reports whether no documents were found.
func (m BrowserModel) Empty() bool {
	return len(m.list.Items()) == 0
}

// Result returns the browser result after the program finishes.
func (m BrowserModel) Result() BrowserResult {
	if m.result != nil {
		return *m.result
	}
	return BrowserResult{Cancelled: true}
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle(AppName)
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't intercept keys when filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			item, ok := m.list.SelectedItem().(fileItem)
			if !ok {
				return m, nil
			}
			return m.finish(BrowserResult{Path: item.name})
		case "q", "esc", "ctrl+c":
			return m.finish(BrowserResult{Cancelled: true})
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) finish(result BrowserResult) (tea.Model, tea.Cmd) {
	if m.embedded {
		if result.Cancelled {
			return m, func() tea.Msg { return BrowserCancelledMsg{} }
		}
		path := result.Path
		return m, func() tea.Msg { return BrowserSelectedMsg{Path: path} }
	}
	m.result = &result
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m BrowserModel) View() string {
	if m.HasError() {
		return "\n  " + Header() + "\n\n  " + ErrorStyle.Render(m.err.Error()) + "\n"
	}
	return m.list.View()
}
