// Package ui implements the interactive export view using bubbletea's Elm architecture.
//
// The [Model] implements the standard Init/Update/View pattern. Progress
// updates flow through a channel from the export engine, providing
// non-blocking status reporting while the library is fetched and written.
package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cratedex/internal/shared"
	"github.com/desertthunder/cratedex/internal/tasks"
)

// RunFunc executes the export pipeline, publishing updates on progress.
// The ui package owns the channel lifecycle; implementations must not close it.
type RunFunc func(progress chan<- tasks.ProgressUpdate) (*tasks.ExportResult, error)

// Model represents the export TUI state.
type Model struct {
	run          RunFunc
	spinner      spinner.Model
	bar          progress.Model
	help         help.Model
	keys         keyMap
	progressChan chan tasks.ProgressUpdate
	resultChan   chan exportCompleteMsg
	current      tasks.ProgressUpdate
	result       *tasks.ExportResult
	err          error
	done         bool
	width        int
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit}}
}

type progressUpdateMsg tasks.ProgressUpdate

type exportCompleteMsg struct {
	result *tasks.ExportResult
	err    error
}

// NewModel creates a new TUI model that drives run when started.
func NewModel(run RunFunc) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	return &Model{
		run:     run,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Result returns the export result and error once the program has finished.
//
// Quitting the view before the pipeline completes reports
// [shared.ErrExportCancelled]; the pipeline goroutine may still be winding
// down at that point and its outcome is discarded.
func (m *Model) Result() (*tasks.ExportResult, error) {
	if !m.done {
		return nil, shared.ErrExportCancelled
	}
	return m.result, m.err
}

// Init starts the spinner and launches the export pipeline.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startExport())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-8, 60)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.current = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case exportCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current export phase.
func (m *Model) View() string {
	if m.done {
		return m.renderResult()
	}

	title := styles.title.Render("Exporting Liked Songs")

	var bar string
	if m.current.Total > 0 {
		bar = "\n" + m.bar.ViewAs(float64(m.current.Step)/float64(m.current.Total))
	}

	line := fmt.Sprintf("%s %s", m.spinner.View(), m.phaseLine())
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return fmt.Sprintf("%s\n%s%s\n\n%s\n", title, line, bar, styles.help.Render(helpView))
}

func (m *Model) phaseLine() string {
	switch m.current.Phase {
	case tasks.FetchProfile:
		return "Looking up your profile..."
	case tasks.FetchLibrary:
		if m.current.Total > 0 {
			return fmt.Sprintf("Fetching liked songs (%d/%d)", m.current.Step, m.current.Total)
		}
		return "Fetching liked songs..."
	case tasks.Normalize:
		return m.current.Message
	case tasks.FetchFeatures:
		return fmt.Sprintf("Fetching audio features (%d/%d)", m.current.Step, m.current.Total)
	case tasks.Assemble:
		return "Merging track attributes..."
	case tasks.WriteOutput:
		return m.current.Message
	default:
		return "Starting up..."
	}
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v", m.err)) + "\n"
	}

	if m.result == nil || len(m.result.Rows) == 0 {
		return styles.warn.Render("No liked songs found; nothing was exported.") + "\n"
	}

	title := styles.ok.Render("Export complete")
	info := fmt.Sprintf("\nUser: %s\nTracks: %d\nWith audio features: %d\nElapsed: %s\n",
		m.result.User.Label(),
		len(m.result.Rows),
		m.result.FeatureCount,
		m.result.FinishedAt.Sub(m.result.StartedAt).Round(10*time.Millisecond),
	)

	return fmt.Sprintf("%s%s", title, info)
}

func (m *Model) startExport() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.resultChan = make(chan exportCompleteMsg, 1)

	go func() {
		result, err := m.run(m.progressChan)
		m.resultChan <- exportCompleteMsg{result: result, err: err}
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return exportCompleteMsg{}
		}

		update, ok := <-m.progressChan
		if !ok {
			return <-m.resultChan
		}
		return progressUpdateMsg(update)
	}
}
