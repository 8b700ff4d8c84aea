package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/tasks"
)

// pollInterval is how often the watcher re-reads the session record.
const pollInterval = 500 * time.Millisecond

// SessionReader loads migration sessions for display.
type SessionReader interface {
	Get(id string) (*models.MigrationSession, error)
}

// keyMap defines the [key.Binding] mapping for the watcher.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit}}
}

type tickMsg time.Time

type sessionMsg struct {
	session *models.MigrationSession
	err     error
}

// Model watches one migration session, polling its persisted state and
// rendering a progress bar. The watcher never talks to the running pipeline;
// everything it shows comes from the store.
type Model struct {
	sessions  SessionReader
	id        string
	migration *models.MigrationSession
	err       error

	progress progress.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	width    int
}

// NewModel creates a watcher for the given migration session id.
func NewModel(sessions SessionReader, id string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		sessions: sessions,
		id:       id,
		progress: progress.New(progress.WithDefaultGradient()),
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts the spinner and the first session fetch.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchSession())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 8
		if w > 60 {
			w = 60
		}
		if w > 0 {
			m.progress.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		return m, m.fetchSession()

	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.migration = msg.session
		if m.migration.Terminal() {
			return m, nil
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the watcher.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}
	if m.migration == nil {
		return fmt.Sprintf("%s Loading migration %s...\n", m.spinner.View(), m.id)
	}

	title := styles.title.Render(fmt.Sprintf("Migration %s", m.migration.ID()))
	route := fmt.Sprintf("%s → %s (%s)", m.migration.FromPhone(), m.migration.ToPhone(), m.migration.MigrationType())
	bar := m.progress.ViewAs(float64(m.migration.Progress()) / 100)

	var status string
	switch m.migration.Status() {
	case models.StatusCompleted:
		status = styles.ok.Render("✓ " + tasks.StatusMessage(m.migration.Status()))
	case models.StatusFailed:
		reason := m.migration.ErrorMessage()
		if reason == "" {
			reason = "Migration failed"
		}
		status = styles.err.Render("✗ " + reason)
	default:
		status = fmt.Sprintf("%s %s", m.spinner.View(), tasks.StatusMessage(m.migration.Status()))
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s\n", title, route, bar, status, helpView)
}

func (m *Model) fetchSession() tea.Cmd {
	return func() tea.Msg {
		session, err := m.sessions.Get(m.id)
		return sessionMsg{session: session, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
