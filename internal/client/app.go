// Package client implements the Bubble Tea terminal UI over the workspace
// synchronization core.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JohannVasquez/chatdeck/internal/config"
	"github.com/JohannVasquez/chatdeck/internal/gateway"
	"github.com/JohannVasquez/chatdeck/internal/workspace"
)

// App implements the bubbletea tea.Model interface for the workspace client.
type App struct {
	cfg config.ClientConfig
	ws  *workspace.Workspace

	input    textinput.Model
	viewport viewport.Model
	helper   help.Model
	styles   styleSet
	commands []commandSpec

	view       primaryView
	width      int
	height     int
	showHelp   bool
	helpView   string
	helpHeight int
	logLine    logLine

	session       *workspace.Session
	attachment    *workspace.AttachmentInput
	messageType   string
	channelFilter string

	searchSeq     int
	searchScope   gateway.SearchScope
	searchResults []gateway.SearchHit
	searchErr     error
	wikiAnswer    string
	devAnswer     string
}

type primaryView int

const (
	viewChat primaryView = iota
	viewSearch
	viewPresence
	viewBots
	viewHelp
)

func (v primaryView) String() string {
	switch v {
	case viewChat:
		return "chat"
	case viewSearch:
		return "search"
	case viewPresence:
		return "presence"
	case viewBots:
		return "bots"
	case viewHelp:
		return "help"
	default:
		return "unknown"
	}
}

type logLevel int

const (
	logLevelInfo logLevel = iota
	logLevelError
)

type logLine struct {
	label string
	body  string
	level logLevel
}

type styleSet struct {
	title         lipgloss.Style
	view          lipgloss.Style
	statusOnline  lipgloss.Style
	statusOffline lipgloss.Style
	label         lipgloss.Style
	value         lipgloss.Style
	active        lipgloss.Style
	dim           lipgloss.Style
	logLabel      lipgloss.Style
	logBody       lipgloss.Style
	logLabelError lipgloss.Style
	logBodyError  lipgloss.Style
	help          lipgloss.Style
}

const renderInterval = 5 * time.Second

// NewApp returns a Bubble Tea model over the provided workspace.
func NewApp(cfg config.ClientConfig, ws *workspace.Workspace) *App {
	input := textinput.New()
	input.Placeholder = "Type a message, or / for commands"
	input.Prompt = "> "
	input.Focus()

	return &App{
		cfg:         cfg,
		ws:          ws,
		input:       input,
		viewport:    viewport.New(0, 0),
		helper:      help.New(),
		styles:      buildStyles(),
		commands:    defaultCommands(),
		view:        viewChat,
		messageType: "text",
		searchScope: gateway.ScopeMessages,
	}
}

// Init is part of the tea.Model interface.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.startCommand(), tickCommand())
}

// Update handles user input and internal events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.height = m.Height
		a.updateViewportSize()
		a.updateInputWidth()
		a.updateViewportContent()
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case tickMsg:
		a.updateViewportContent()
		return a, tickCommand()
	case startedMsg:
		return a.handleStarted(m)
	case loginResultMsg:
		return a.handleLoginResult(m)
	case registerResultMsg:
		return a.handleRegisterResult(m)
	case logoutDoneMsg:
		return a.handleLogoutDone(m)
	case channelsLoadedMsg:
		return a.handleChannelsLoaded(m)
	case selectionChangedMsg:
		return a.handleSelectionChanged(m)
	case threadCreatedMsg:
		return a.handleThreadCreated(m)
	case sendResultMsg:
		return a.handleSendResult(m)
	case searchResultMsg:
		return a.handleSearchResult(m)
	case botReplyMsg:
		return a.handleBotReply(m)
	case refreshDoneMsg:
		return a.handleRefreshDone(m)
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return a, a.quitCommand()
	case tea.KeyEnter:
		value := a.input.Value()
		a.input.SetValue("")
		a.updateHelp()
		if cmd := a.handleSubmit(value); cmd != nil {
			return a, cmd
		}
		return a, nil
	case tea.KeyTab:
		a.handleTabCompletion()
		a.updateHelp()
		return a, nil
	case tea.KeyPgUp:
		a.viewport.LineUp(a.viewport.Height)
		return a, nil
	case tea.KeyPgDown:
		a.viewport.LineDown(a.viewport.Height)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.updateHelp()
	a.updateViewportSize()
	return a, cmd
}

func (a *App) logf(format string, args ...any) {
	a.logLine = logLine{label: "info:", body: fmt.Sprintf(format, args...), level: logLevelInfo}
}

func (a *App) logErrorf(format string, args ...any) {
	a.logLine = logLine{label: "error:", body: fmt.Sprintf(format, args...), level: logLevelError}
}

func (a *App) setView(view primaryView) {
	if a.view == view {
		return
	}
	a.view = view
	a.updateViewportContent()
}

func (a *App) loggedIn() bool {
	return a.session != nil
}

// background returns the context bounding command goroutines. The workspace
// owns cancellation of its own loops; per-call deadlines come from the HTTP
// client timeout.
func (a *App) background() context.Context {
	return context.Background()
}

type tickMsg time.Time

func tickCommand() tea.Cmd {
	return tea.Tick(renderInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
