package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/chladni/internal/pattern"
	"github.com/olivier-w/chladni/internal/util"
)

// Job runs one computation, polling cancel and reporting completed rows.
type Job func(cancel pattern.Canceler, progress func(done, total int)) (peak float32, completed bool)

// ComputeResult holds the outcome of a computation.
type ComputeResult struct {
	Peak      float32
	Completed bool
	Elapsed   time.Duration
}

// ComputeModel is the Bubbletea model shown while a pattern is computed.
type ComputeModel struct {
	title    string
	job      Job
	cancel   *pattern.Flag
	spinner  spinner.Model
	progress progress.Model
	spring   harmonica.Spring

	done      int
	total     int
	shown     float64
	velocity  float64
	started   time.Time
	canceling bool
	result    *ComputeResult
	width     int
	statusCh  chan computeProgressMsg
}

// NewCompute creates a model that runs job once the program starts.
func NewCompute(title string, job Job) ComputeModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	p := progress.New(
		progress.WithScaledGradient("#3B82F6", "#EF4444"),
		progress.WithoutPercentage(),
	)

	return ComputeModel{
		title:    title,
		job:      job,
		cancel:   &pattern.Flag{},
		spinner:  s,
		progress: p,
		spring:   harmonica.NewSpring(harmonica.FPS(animFPS), 6.0, 1.0),
		statusCh: make(chan computeProgressMsg, 1),
	}
}

// Result returns the computation result after the program finishes. A
// program that quit before the job reported back counts as canceled.
func (m ComputeModel) Result() ComputeResult {
	if m.result != nil {
		return *m.result
	}
	return ComputeResult{}
}

// Canceler exposes the flag the model sets on q/esc/ctrl+c.
func (m ComputeModel) Canceler() *pattern.Flag {
	return m.cancel
}

func (m ComputeModel) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(AppName+" - "+m.title),
		m.spinner.Tick,
		m.startJob(),
		m.waitForProgress(),
		frameCmd(),
	)
}

func (m ComputeModel) startJob() tea.Cmd {
	job, cancel, statusCh := m.job, m.cancel, m.statusCh
	return func() tea.Msg {
		start := time.Now()
		peak, completed := job(cancel, func(done, total int) {
			// Drop stale updates rather than stall the kernel on a slow UI.
			select {
			case <-statusCh:
			default:
			}
			select {
			case statusCh <- computeProgressMsg{done: done, total: total}:
			default:
			}
		})
		close(statusCh)
		return computeDoneMsg{peak: peak, completed: completed, elapsed: time.Since(start)}
	}
}

func (m ComputeModel) waitForProgress() tea.Cmd {
	statusCh := m.statusCh
	return func() tea.Msg {
		msg, ok := <-statusCh
		if !ok {
			return nil
		}
		return msg
	}
}

func (m ComputeModel) fraction() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m ComputeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) && !m.canceling {
			// Keep running until the job returns so nothing writes the
			// grid after the program exits.
			m.canceling = true
			m.cancel.Cancel()
		}
		return m, nil

	case computeProgressMsg:
		if m.started.IsZero() {
			m.started = time.Now()
		}
		m.done = msg.done
		m.total = msg.total
		return m, m.waitForProgress()

	case computeDoneMsg:
		m.result = &ComputeResult{
			Peak:      msg.peak,
			Completed: msg.completed,
			Elapsed:   msg.elapsed,
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case frameMsg:
		if m.result != nil {
			return m, nil
		}
		m.shown, m.velocity = m.spring.Update(m.shown, m.velocity, m.fraction())
		return m, frameCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-8, 20), 60)
		return m, nil
	}

	return m, nil
}

func (m ComputeModel) View() string {
	if m.result != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(Header())
	b.WriteString("  ")
	b.WriteString(valueStyle.Render(m.title))
	b.WriteString("\n\n  ")

	label := "Computing..."
	if m.canceling {
		label = "Canceling..."
	}
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(statusStyle.Render(label))
	b.WriteString("\n")

	if m.total > 0 {
		shown := min(max(m.shown, 0), 1)
		b.WriteString("  ")
		b.WriteString(m.progress.ViewAs(shown))
		b.WriteString(fmt.Sprintf("  %.0f%%\n", m.fraction()*100))

		detail := fmt.Sprintf("row %d of %d", m.done, m.total)
		if !m.started.IsZero() {
			detail += "  ·  " + util.FormatElapsed(time.Since(m.started))
		}
		b.WriteString("  ")
		b.WriteString(timeStyle.Render(detail))
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(helpStyle.Render(helpText(m.canceling)))
	b.WriteString("\n")
	return b.String()
}
