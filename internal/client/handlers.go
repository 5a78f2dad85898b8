package client

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
	"github.com/JohannVasquez/chatdeck/internal/workspace"
)

type startedMsg struct {
	session *workspace.Session
	err     error
}

type loginResultMsg struct {
	session workspace.Session
	err     error
}

type registerResultMsg struct {
	username string
	err      error
}

type logoutDoneMsg struct{}

type channelsLoadedMsg struct {
	err error
}

type selectionChangedMsg struct {
	err error
}

type threadCreatedMsg struct {
	thread gateway.Thread
	err    error
}

type sendResultMsg struct {
	result workspace.SendResult
	err    error
}

type searchResultMsg struct {
	seq  int
	hits []gateway.SearchHit
	err  error
}

type botReplyMsg struct {
	bot  string
	text string
	err  error
}

type refreshDoneMsg struct {
	err error
}

func (a *App) startCommand() tea.Cmd {
	return func() tea.Msg {
		session, err := a.ws.Start(a.background())
		return startedMsg{session: session, err: err}
	}
}

func (a *App) loginCommand(usernameOrEmail, password string) tea.Cmd {
	return func() tea.Msg {
		session, err := a.ws.Login(a.background(), usernameOrEmail, password)
		return loginResultMsg{session: session, err: err}
	}
}

func (a *App) registerCommand(req gateway.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		user, err := a.ws.Session.Register(a.background(), req)
		return registerResultMsg{username: user.Username, err: err}
	}
}

func (a *App) logoutCommand() tea.Cmd {
	return func() tea.Msg {
		a.ws.Logout(a.background())
		return logoutDoneMsg{}
	}
}

func (a *App) loadChannelsCommand() tea.Cmd {
	return func() tea.Msg {
		return channelsLoadedMsg{err: a.ws.LoadChannels(a.background())}
	}
}

func (a *App) selectChannelCommand(channel gateway.Channel) tea.Cmd {
	return func() tea.Msg {
		return selectionChangedMsg{err: a.ws.Selection.SelectChannel(channel)}
	}
}

func (a *App) selectThreadCommand(thread gateway.Thread) tea.Cmd {
	return func() tea.Msg {
		return selectionChangedMsg{err: a.ws.Selection.SelectThread(thread)}
	}
}

func (a *App) createThreadCommand(title string) tea.Cmd {
	return func() tea.Msg {
		thread, err := a.ws.CreateThread(a.background(), title)
		return threadCreatedMsg{thread: thread, err: err}
	}
}

func (a *App) sendCommand(content string) tea.Cmd {
	req := workspace.SendRequest{
		Content:     content,
		MessageType: a.messageType,
		Attachment:  a.attachment,
	}
	a.attachment = nil
	return func() tea.Msg {
		result, err := a.ws.Composer.Send(a.background(), req)
		return sendResultMsg{result: result, err: err}
	}
}

func (a *App) searchCommand(seq int, scope gateway.SearchScope, query string) tea.Cmd {
	filters := gateway.SearchFilters{
		ChannelID: a.ws.Selection.ChannelID(),
		ThreadID:  a.ws.Selection.ThreadID(),
	}
	return func() tea.Msg {
		hits, err := a.ws.Searcher.Search(a.background(), scope, query, filters)
		return searchResultMsg{seq: seq, hits: hits, err: err}
	}
}

func (a *App) botCommand(bot, question string) tea.Cmd {
	return func() tea.Msg {
		var text string
		var err error
		if bot == "wiki" {
			text, err = a.ws.AskWiki(a.background(), question)
		} else {
			text, err = a.ws.AskProgramming(a.background(), question)
		}
		return botReplyMsg{bot: bot, text: text, err: err}
	}
}

func (a *App) refreshCommand() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: a.ws.Refresh(a.background())}
	}
}

func (a *App) quitCommand() tea.Cmd {
	return func() tea.Msg {
		a.ws.Close()
		return tea.Quit()
	}
}

func (a *App) handleStarted(msg startedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logErrorf("restore session: %v", msg.err)
		a.updateViewportContent()
		return a, nil
	}
	if msg.session == nil {
		a.logf("welcome, /login or /register to begin")
		a.updateViewportContent()
		return a, nil
	}
	a.session = msg.session
	a.logf("welcome back, %s", a.session.User.Username)
	a.updateViewportContent()
	return a, a.loadChannelsCommand()
}

func (a *App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, gateway.ErrUnauthorized) {
			a.logErrorf("login failed: bad credentials")
		} else {
			a.logErrorf("login failed: %v", msg.err)
		}
		return a, nil
	}
	session := msg.session
	a.session = &session
	a.logf("logged in as %s", session.User.Username)
	a.updateViewportContent()
	return a, a.loadChannelsCommand()
}

func (a *App) handleRegisterResult(msg registerResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logErrorf("register failed: %v", msg.err)
		return a, nil
	}
	a.logf("account %s created, /login to continue", msg.username)
	return a, nil
}

func (a *App) handleLogoutDone(logoutDoneMsg) (tea.Model, tea.Cmd) {
	a.session = nil
	a.attachment = nil
	a.channelFilter = ""
	a.searchResults = nil
	a.searchErr = nil
	a.wikiAnswer = ""
	a.devAnswer = ""
	a.setView(viewChat)
	a.logf("logged out")
	a.updateViewportContent()
	return a, nil
}

func (a *App) handleChannelsLoaded(msg channelsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logErrorf("load channels: %v", msg.err)
	} else {
		a.logf("%d channels", len(a.ws.Channels.Get().Items))
	}
	a.updateViewportContent()
	return a, nil
}

func (a *App) handleSelectionChanged(msg selectionChangedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logErrorf("select: %v", msg.err)
	} else if thread := a.ws.Selection.Thread(); thread != nil {
		a.logf("viewing %s", thread.ResolvedTitle())
	} else if channel := a.ws.Selection.Channel(); channel != nil {
		a.logf("viewing %s", channel.Name)
	}
	a.updateViewportContent()
	return a, nil
}

func (a *App) handleThreadCreated(msg threadCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logErrorf("create thread: %v", msg.err)
		a.updateViewportContent()
		return a, nil
	}
	a.logf("thread %s created", msg.thread.ResolvedTitle())
	a.updateViewportContent()
	return a, a.selectThreadCommand(msg.thread)
}

func (a *App) handleSendResult(msg sendResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var rejected *workspace.ModerationRejectedError
		switch {
		case errors.As(msg.err, &rejected):
			a.logErrorf("message blocked: %s", rejected.Reason)
		case msg.result.Message.ID != "":
			a.logErrorf("message sent, attachment failed: %v", msg.err)
		default:
			a.logErrorf("send failed: %v", msg.err)
		}
		a.updateViewportContent()
		return a, nil
	}
	if msg.result.Attachment != nil {
		a.logf("sent with %s", msg.result.Attachment.ResolvedName())
	} else {
		a.logf("sent")
	}
	a.updateViewportContent()
	return a, a.reloadThreadViewCommand()
}

// reloadThreadViewCommand pulls fresh messages and attachments after a send
// invalidated them.
func (a *App) reloadThreadViewCommand() tea.Cmd {
	threadID := a.ws.Selection.ThreadID()
	if threadID == "" {
		return nil
	}
	return func() tea.Msg {
		_ = a.ws.Messages.Load(a.background(), threadID)
		_ = a.ws.Attachments.Load(a.background(), threadID)
		return selectionChangedMsg{}
	}
}

func (a *App) handleSearchResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	if msg.seq != a.searchSeq {
		return a, nil
	}
	a.searchResults = msg.hits
	a.searchErr = msg.err
	if msg.err != nil {
		a.logErrorf("search: %v", msg.err)
	} else {
		a.logf("%d results", len(msg.hits))
	}
	a.updateViewportContent()
	return a, nil
}

func (a *App) handleBotReply(msg botReplyMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logErrorf("%s assistant: %v", msg.bot, msg.err)
		a.updateViewportContent()
		return a, nil
	}
	if msg.bot == "wiki" {
		a.wikiAnswer = msg.text
	} else {
		a.devAnswer = msg.text
	}
	a.logf("%s assistant replied", msg.bot)
	a.updateViewportContent()
	return a, nil
}

func (a *App) handleRefreshDone(msg refreshDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logErrorf("refresh: %v", msg.err)
	} else {
		a.logf("refreshed")
	}
	a.updateViewportContent()
	return a, nil
}
