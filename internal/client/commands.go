package client

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
	"github.com/JohannVasquez/chatdeck/internal/workspace"
)

type commandSpec struct {
	trigger     string
	usage       string
	description string
}

func defaultCommands() []commandSpec {
	return []commandSpec{
		{trigger: "/login", usage: "/login <username> <password>", description: "sign in to the workspace"},
		{trigger: "/register", usage: "/register <username> <email> <password> [full name]", description: "create an account"},
		{trigger: "/logout", usage: "/logout", description: "sign out and go offline"},
		{trigger: "/channels", usage: "/channels [filter]", description: "list channels, optionally filtered by name"},
		{trigger: "/channel", usage: "/channel <number|id>", description: "select a channel"},
		{trigger: "/thread", usage: "/thread <number|id>", description: "select a thread in the current channel"},
		{trigger: "/newthread", usage: "/newthread <title>", description: "start a thread in the current channel"},
		{trigger: "/send", usage: "/send <message>", description: "send a message to the current thread"},
		{trigger: "/attach", usage: "/attach <path>", description: "stage a file for the next message"},
		{trigger: "/detach", usage: "/detach", description: "drop the staged attachment"},
		{trigger: "/type", usage: "/type <text|audio|file>", description: "set the outgoing message type"},
		{trigger: "/search", usage: "/search <messages|files|channels|all> <query>", description: "search the workspace"},
		{trigger: "/files", usage: "/files", description: "list attachments in the current thread"},
		{trigger: "/presence", usage: "/presence", description: "show who is online"},
		{trigger: "/wiki", usage: "/wiki <question>", description: "ask the wiki assistant"},
		{trigger: "/dev", usage: "/dev <question>", description: "ask the programming assistant"},
		{trigger: "/view", usage: "/view <chat|search|presence|bots|help>", description: "switch the main panel"},
		{trigger: "/refresh", usage: "/refresh", description: "reload everything for the current selection"},
		{trigger: "/help", usage: "/help", description: "show command help"},
		{trigger: "/quit", usage: "/quit", description: "exit"},
	}
}

// handleSubmit routes the submitted line. Lines without the command prefix
// are sent as chat messages.
func (a *App) handleSubmit(value string) tea.Cmd {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !strings.HasPrefix(value, a.cfg.CommandPrefix) {
		return a.sendCommand(value)
	}

	fields := strings.Fields(value)
	trigger, args := fields[0], fields[1:]

	switch trigger {
	case "/login":
		return a.runLogin(args)
	case "/register":
		return a.runRegister(args)
	case "/logout":
		if !a.loggedIn() {
			a.logErrorf("not logged in")
			return nil
		}
		return a.logoutCommand()
	case "/channels":
		a.channelFilter = strings.Join(args, " ")
		a.setView(viewChat)
		if !a.loggedIn() {
			a.logErrorf("log in first")
			return nil
		}
		return a.loadChannelsCommand()
	case "/channel":
		return a.runSelectChannel(args)
	case "/thread":
		return a.runSelectThread(args)
	case "/newthread":
		return a.runNewThread(args)
	case "/send":
		if len(args) == 0 {
			a.logErrorf("usage: /send <message>")
			return nil
		}
		return a.sendCommand(strings.Join(args, " "))
	case "/attach":
		a.runAttach(args)
		return nil
	case "/detach":
		a.attachment = nil
		a.logf("attachment dropped")
		return nil
	case "/type":
		a.runType(args)
		return nil
	case "/search":
		return a.runSearch(args)
	case "/files":
		a.setView(viewChat)
		if a.ws.Selection.ThreadID() == "" {
			a.logErrorf("select a thread first")
			return nil
		}
		return a.refreshCommand()
	case "/presence":
		a.setView(viewPresence)
		return nil
	case "/wiki":
		return a.runBot("wiki", args)
	case "/dev":
		return a.runBot("dev", args)
	case "/view":
		a.runView(args)
		return nil
	case "/refresh":
		if !a.loggedIn() {
			a.logErrorf("log in first")
			return nil
		}
		return a.refreshCommand()
	case "/help":
		a.setView(viewHelp)
		return nil
	case "/quit":
		return a.quitCommand()
	default:
		a.logErrorf("unknown command %s, try /help", trigger)
		return nil
	}
}

func (a *App) runLogin(args []string) tea.Cmd {
	if len(args) != 2 {
		a.logErrorf("usage: /login <username> <password>")
		return nil
	}
	if a.loggedIn() {
		a.logErrorf("already logged in as %s, /logout first", a.session.User.Username)
		return nil
	}
	a.logf("logging in...")
	return a.loginCommand(args[0], args[1])
}

func (a *App) runRegister(args []string) tea.Cmd {
	if len(args) < 3 {
		a.logErrorf("usage: /register <username> <email> <password> [full name]")
		return nil
	}
	req := gateway.RegisterRequest{
		Username: args[0],
		Email:    args[1],
		Password: args[2],
		FullName: strings.Join(args[3:], " "),
	}
	a.logf("registering %s...", req.Username)
	return a.registerCommand(req)
}

func (a *App) runSelectChannel(args []string) tea.Cmd {
	if len(args) != 1 {
		a.logErrorf("usage: /channel <number|id>")
		return nil
	}
	channels := a.visibleChannels()
	target, ok := pickByIndexOrID(args[0], channels, func(c gateway.Channel) string { return c.ResolvedID() })
	if !ok {
		a.logErrorf("no such channel: %s", args[0])
		return nil
	}
	a.setView(viewChat)
	return a.selectChannelCommand(target)
}

func (a *App) runSelectThread(args []string) tea.Cmd {
	if len(args) != 1 {
		a.logErrorf("usage: /thread <number|id>")
		return nil
	}
	if a.ws.Selection.ChannelID() == "" {
		a.logErrorf("select a channel first")
		return nil
	}
	threads := a.ws.Threads.Get().Items
	target, ok := pickByIndexOrID(args[0], threads, func(t gateway.Thread) string { return t.ResolvedID() })
	if !ok {
		a.logErrorf("no such thread: %s", args[0])
		return nil
	}
	a.setView(viewChat)
	return a.selectThreadCommand(target)
}

func (a *App) runNewThread(args []string) tea.Cmd {
	if len(args) == 0 {
		a.logErrorf("usage: /newthread <title>")
		return nil
	}
	if a.ws.Selection.ChannelID() == "" {
		a.logErrorf("select a channel first")
		return nil
	}
	title := strings.Join(args, " ")
	a.logf("creating thread %q...", title)
	return a.createThreadCommand(title)
}

func (a *App) runAttach(args []string) {
	if len(args) != 1 {
		a.logErrorf("usage: /attach <path>")
		return
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		a.logErrorf("read %s: %v", args[0], err)
		return
	}
	a.attachment = &workspace.AttachmentInput{
		Filename: filepath.Base(args[0]),
		Content:  content,
	}
	a.logf("staged %s (%d bytes), it rides with the next message", a.attachment.Filename, len(content))
}

func (a *App) runType(args []string) {
	if len(args) != 1 {
		a.logErrorf("usage: /type <text|audio|file>")
		return
	}
	switch args[0] {
	case "text", "audio", "file":
		a.messageType = args[0]
		a.logf("message type set to %s", a.messageType)
	default:
		a.logErrorf("unknown message type %s", args[0])
	}
}

func (a *App) runSearch(args []string) tea.Cmd {
	if len(args) < 2 {
		a.logErrorf("usage: /search <messages|files|channels|all> <query>")
		return nil
	}
	var scope gateway.SearchScope
	switch args[0] {
	case "messages":
		scope = gateway.ScopeMessages
	case "files":
		scope = gateway.ScopeFiles
	case "channels":
		scope = gateway.ScopeChannels
	case "all":
		scope = gateway.ScopeAll
	default:
		a.logErrorf("unknown search scope %s", args[0])
		return nil
	}
	query := strings.Join(args[1:], " ")
	a.searchSeq++
	a.searchScope = scope
	a.setView(viewSearch)
	a.logf("searching %s for %q...", scope, query)
	return a.searchCommand(a.searchSeq, scope, query)
}

func (a *App) runBot(bot string, args []string) tea.Cmd {
	if len(args) == 0 {
		a.logErrorf("usage: /%s <question>", bot)
		return nil
	}
	a.setView(viewBots)
	a.logf("asking the %s assistant...", bot)
	return a.botCommand(bot, strings.Join(args, " "))
}

func (a *App) runView(args []string) {
	if len(args) != 1 {
		a.logErrorf("usage: /view <chat|search|presence|bots|help>")
		return
	}
	switch args[0] {
	case "chat":
		a.setView(viewChat)
	case "search":
		a.setView(viewSearch)
	case "presence":
		a.setView(viewPresence)
	case "bots":
		a.setView(viewBots)
	case "help":
		a.setView(viewHelp)
	default:
		a.logErrorf("unknown view %s", args[0])
	}
}

// visibleChannels applies the client-side name filter set by /channels.
func (a *App) visibleChannels() []gateway.Channel {
	items := a.ws.Channels.Get().Items
	if a.channelFilter == "" {
		return items
	}
	needle := strings.ToLower(a.channelFilter)
	filtered := make([]gateway.Channel, 0, len(items))
	for _, c := range items {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// pickByIndexOrID resolves a 1-based list number or a raw resource id.
func pickByIndexOrID[T any](arg string, items []T, id func(T) string) (T, bool) {
	var zero T
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(items) {
			return zero, false
		}
		return items[n-1], true
	}
	for _, item := range items {
		if id(item) == arg {
			return item, true
		}
	}
	return zero, false
}
