package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greenshed/plantnode/internal/client"
	"github.com/greenshed/plantnode/internal/command"
)

const refreshInterval = 2 * time.Second

// Messages for async operations
type stateMsg struct {
	state *client.State
	err   error
}

type moistureMsg struct {
	value int
	err   error
}

type appliedMsg struct {
	category command.Category
	token    string
	err      error
}

type refreshTickMsg struct{}

// panelKeyMap defines key bindings for the control panel
type panelKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Apply   key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k panelKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Apply, k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k panelKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Apply, k.Refresh, k.Quit},
	}
}

// PanelModel is the interactive control panel for a single plant node.
// The left column picks a command category, the right column picks a
// token within it, and the cached node state refreshes on a timer.
type PanelModel struct {
	Client *client.Client

	// Node state
	State    *client.State
	Moisture int
	Err      error

	// Picker state
	Categories []command.Category
	CatIndex   int
	TokenIndex int

	// Pending apply feedback
	Applying   bool
	LastStatus string

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    panelKeyMap
}

// NewPanelModel creates a control panel bound to the given node client.
func NewPanelModel(c *client.Client) PanelModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	keys := panelKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev token"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next token"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev category"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next category"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "send"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	return PanelModel{
		Client:     c,
		Moisture:   -1,
		Categories: command.Categories(),
		Spinner:    s,
		Help:       help.New(),
		Keys:       keys,
	}
}

// Init starts the first state fetch and the refresh timer.
func (m PanelModel) Init() tea.Cmd {
	return tea.Batch(
		fetchState(m.Client),
		fetchMoisture(m.Client),
		scheduleRefresh(),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case stateMsg:
		m.Err = msg.err
		if msg.err == nil {
			m.State = msg.state
		}

	case moistureMsg:
		if msg.err == nil {
			m.Moisture = msg.value
		}

	case appliedMsg:
		m.Applying = false
		if msg.err != nil {
			m.LastStatus = ErrorStyle.Render(fmt.Sprintf("✗ %s %s: %v", msg.category, msg.token, msg.err))
		} else {
			m.LastStatus = SuccessStyle.Render(fmt.Sprintf("✓ sent %s %s", msg.category, msg.token))
		}
		return m, fetchState(m.Client)

	case refreshTickMsg:
		return m, tea.Batch(
			fetchState(m.Client),
			fetchMoisture(m.Client),
			scheduleRefresh(),
		)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateKeys handles keyboard input
func (m PanelModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit), msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Left):
		m.CatIndex = (m.CatIndex + len(m.Categories) - 1) % len(m.Categories)
		m.TokenIndex = 0

	case key.Matches(msg, m.Keys.Right):
		m.CatIndex = (m.CatIndex + 1) % len(m.Categories)
		m.TokenIndex = 0

	case key.Matches(msg, m.Keys.Up):
		tokens := command.Tokens(m.category())
		m.TokenIndex = (m.TokenIndex + len(tokens) - 1) % len(tokens)

	case key.Matches(msg, m.Keys.Down):
		tokens := command.Tokens(m.category())
		m.TokenIndex = (m.TokenIndex + 1) % len(tokens)

	case key.Matches(msg, m.Keys.Apply):
		if m.Applying {
			return m, nil
		}
		tokens := command.Tokens(m.category())
		if m.TokenIndex < len(tokens) {
			m.Applying = true
			m.LastStatus = ""
			return m, applyCommand(m.Client, m.category(), tokens[m.TokenIndex])
		}

	case key.Matches(msg, m.Keys.Refresh):
		return m, tea.Batch(fetchState(m.Client), fetchMoisture(m.Client))
	}

	return m, nil
}

func (m PanelModel) category() command.Category {
	return m.Categories[m.CatIndex]
}

// View renders the panel
func (m PanelModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var b strings.Builder

	b.WriteString(m.renderState())
	b.WriteString("\n")
	b.WriteString(m.renderPicker())
	b.WriteString("\n")

	if m.Applying {
		b.WriteString(SpinnerStyle.Render(m.Spinner.View() + " sending..."))
		b.WriteString("\n")
	} else if m.LastStatus != "" {
		b.WriteString(m.LastStatus)
		b.WriteString("\n")
	}

	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(b.String(), helpText, m.Width, m.Height)
}

// renderState renders the cached node state box
func (m PanelModel) renderState() string {
	var b strings.Builder

	if m.Err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("✗ node unreachable: %v", m.Err)))
		return InfoBoxStyle.Render(b.String())
	}

	if m.State == nil {
		b.WriteString(SpinnerStyle.Render(m.Spinner.View() + " fetching node state..."))
		return InfoBoxStyle.Render(b.String())
	}

	moisture := "unknown"
	if m.Moisture >= 0 {
		moisture = fmt.Sprintf("%d", m.Moisture)
	}

	b.WriteString(fmt.Sprintf("  Power:      %s\n", m.State.Power))
	b.WriteString(fmt.Sprintf("  Color:      %s\n", m.State.Color))
	b.WriteString(fmt.Sprintf("  Brightness: %s\n", m.State.Brightness))
	b.WriteString(fmt.Sprintf("  Function:   %s\n", m.State.Function))
	b.WriteString(fmt.Sprintf("  Raw:        %s\n", m.State.Raw))
	b.WriteString(fmt.Sprintf("  Moisture:   %s", moisture))

	return InfoBoxStyle.Render(b.String())
}

// renderPicker renders the category and token columns
func (m PanelModel) renderPicker() string {
	var cats strings.Builder
	cats.WriteString(SubtitleStyle.Render("Category"))
	cats.WriteString("\n")
	for i, cat := range m.Categories {
		cats.WriteString(RenderMenuItem(string(cat), i == m.CatIndex))
		cats.WriteString("\n")
	}

	var toks strings.Builder
	toks.WriteString(SubtitleStyle.Render("Token"))
	toks.WriteString("\n")
	for i, token := range command.Tokens(m.category()) {
		toks.WriteString(RenderMenuItem(token, i == m.TokenIndex))
		toks.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cats.String(), "    ", toks.String())
}

// fetchState is a command that reads the node's cached state
func fetchState(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		state, err := c.CachedState(ctx)
		return stateMsg{state: state, err: err}
	}
}

// fetchMoisture is a command that reads the node's moisture sensor
func fetchMoisture(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		value, err := c.Moisture(ctx)
		return moistureMsg{value: value, err: err}
	}
}

// applyCommand is a command that sends a category/token pair to the node
func applyCommand(c *client.Client, cat command.Category, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := c.Set(ctx, cat, token)
		return appliedMsg{category: cat, token: token, err: err}
	}
}

// scheduleRefresh queues the next periodic state refresh
func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// Run starts the control panel in the alternate screen buffer and blocks
// until the user quits.
func Run(c *client.Client) error {
	program := tea.NewProgram(NewPanelModel(c), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
