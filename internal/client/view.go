package client

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/mattn/go-runewidth"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
	"github.com/JohannVasquez/chatdeck/internal/workspace"
)

var homeContent = buildHomeContent()

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	if a.showHelp && a.helpView != "" {
		b.WriteString(a.styles.help.Render(a.helpView))
		b.WriteString("\n")
	}

	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(a.logLineView())
	b.WriteString("\n")
	b.WriteString(a.statusLine())

	return b.String()
}

func (a *App) updateViewportContent() {
	width := a.viewport.Width
	if width <= 0 {
		width = a.width
	}

	switch a.view {
	case viewChat:
		if !a.loggedIn() {
			a.viewport.SetContent(homeContent)
			return
		}
		lines := a.renderChatLines()
		a.viewport.SetContent(strings.Join(wrapLines(lines, width), "\n"))
		a.viewport.GotoBottom()
	case viewSearch:
		lines := a.renderSearchLines()
		a.viewport.SetContent(strings.Join(wrapLines(lines, width), "\n"))
	case viewPresence:
		a.viewport.SetContent(a.renderPresenceView())
	case viewBots:
		lines := a.renderBotLines()
		a.viewport.SetContent(strings.Join(wrapLines(lines, width), "\n"))
	case viewHelp:
		a.viewport.SetContent(a.renderHelpView())
	}
}

// renderChatLines lays out the channel directory, the thread list for the
// selected channel, and the message history for the selected thread.
func (a *App) renderChatLines() []string {
	var lines []string

	channels := a.visibleChannels()
	snapshot := a.ws.Channels.Get()
	header := "Channels"
	if a.channelFilter != "" {
		header = fmt.Sprintf("Channels matching %q", a.channelFilter)
	}
	lines = append(lines, a.styles.label.Render(header))
	switch {
	case snapshot.Err != nil && len(channels) == 0:
		lines = append(lines, a.styles.dim.Render("  unavailable: "+snapshot.Err.Error()))
	case len(channels) == 0:
		lines = append(lines, a.styles.dim.Render("  none, /refresh to retry"))
	default:
		selected := a.ws.Selection.ChannelID()
		for i, c := range channels {
			lines = append(lines, a.listEntry(i+1, c.Name, c.ResolvedID() == selected, snapshot.Stale))
		}
	}

	if a.ws.Selection.State() == workspace.StateNoChannel {
		lines = append(lines, "", a.styles.dim.Render("Pick a channel with /channel <number>."))
		return lines
	}

	lines = append(lines, "", a.styles.label.Render("Threads"))
	threadSnap := a.ws.Threads.Get()
	threads := threadSnap.Items
	switch {
	case threadSnap.Loading && len(threads) == 0:
		lines = append(lines, a.styles.dim.Render("  loading..."))
	case threadSnap.Err != nil && len(threads) == 0:
		lines = append(lines, a.styles.dim.Render("  unavailable: "+threadSnap.Err.Error()))
	case len(threads) == 0:
		lines = append(lines, a.styles.dim.Render("  none yet, /newthread <title> to start one"))
	default:
		selected := a.ws.Selection.ThreadID()
		for i, t := range threads {
			lines = append(lines, a.listEntry(i+1, t.ResolvedTitle(), t.ResolvedID() == selected, threadSnap.Stale))
		}
	}

	if a.ws.Selection.State() != workspace.StateChannelAndThread {
		return lines
	}

	lines = append(lines, "", a.styles.label.Render("Messages"))
	msgSnap := a.ws.Messages.Get()
	switch {
	case msgSnap.Loading && len(msgSnap.Items) == 0:
		lines = append(lines, a.styles.dim.Render("  loading..."))
	case msgSnap.Err != nil && len(msgSnap.Items) == 0:
		lines = append(lines, a.styles.dim.Render("  unavailable: "+msgSnap.Err.Error()))
	case len(msgSnap.Items) == 0:
		lines = append(lines, a.styles.dim.Render("  no messages yet, type and press Enter"))
	default:
		for _, m := range msgSnap.Items {
			lines = append(lines, a.messageLine(m))
		}
	}

	attSnap := a.ws.Attachments.Get()
	if len(attSnap.Items) > 0 {
		lines = append(lines, "", a.styles.label.Render("Attachments"))
		for _, f := range attSnap.Items {
			entry := fmt.Sprintf("  %s (%d bytes)", f.ResolvedName(), f.Size)
			lines = append(lines, a.styles.value.Render(entry))
		}
	}
	return lines
}

func (a *App) listEntry(n int, name string, active, stale bool) string {
	marker := "  "
	style := a.styles.value
	if active {
		marker = "> "
		style = a.styles.active
	}
	entry := fmt.Sprintf("%s%2d. %s", marker, n, name)
	if stale {
		entry += " *"
	}
	return style.Render(entry)
}

func (a *App) messageLine(m gateway.Message) string {
	ts := formatTimestamp(m.CreatedAt)
	author := m.ResolvedAuthor()
	if author == "" {
		author = "unknown"
	}
	prefix := fmt.Sprintf("[%s] %s: ", ts, author)
	body := m.Content
	if kind := m.ResolvedType(); kind != "text" {
		body = fmt.Sprintf("(%s) %s", kind, body)
	}
	return a.styles.dim.Render(prefix) + a.styles.value.Render(body)
}

func formatTimestamp(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Local().Format("15:04")
		}
	}
	if raw == "" {
		return "--:--"
	}
	return raw
}

func (a *App) renderSearchLines() []string {
	var lines []string
	lines = append(lines, a.styles.label.Render(fmt.Sprintf("Search results (%s)", a.searchScope)))
	switch {
	case a.searchErr != nil:
		lines = append(lines, a.styles.dim.Render("  "+a.searchErr.Error()))
	case len(a.searchResults) == 0:
		lines = append(lines, a.styles.dim.Render("  nothing found, /search <scope> <query> to look again"))
	default:
		for i, hit := range a.searchResults {
			label := hit.Label()
			entry := fmt.Sprintf("%2d. %s", i+1, label)
			if hit.Kind != "" {
				entry = fmt.Sprintf("%2d. [%s] %s", i+1, hit.Kind, label)
			}
			lines = append(lines, a.styles.value.Render(entry))
			if hit.Content != "" && hit.Content != label {
				lines = append(lines, a.styles.dim.Render("      "+hit.Content))
			}
		}
	}
	return lines
}

func (a *App) renderPresenceView() string {
	entries, stats := a.ws.Heartbeat.Roster()

	var b strings.Builder
	b.WriteString(a.styles.label.Render("Who is online"))
	b.WriteString("\n")
	summary := fmt.Sprintf("online %d / away %d / offline %d / total %d",
		stats.Online, stats.Away, stats.Offline, stats.Total)
	b.WriteString(a.styles.dim.Render(summary))
	b.WriteString("\n\n")
	if len(entries) == 0 {
		b.WriteString(a.styles.dim.Render("nobody right now"))
		return b.String()
	}
	for _, e := range entries {
		line := fmt.Sprintf("  %s", e.ResolvedUserID())
		if e.Device != "" {
			line += " (" + e.Device + ")"
		}
		b.WriteString(a.styles.statusOnline.Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) renderBotLines() []string {
	var lines []string
	lines = append(lines, a.styles.label.Render("Wiki assistant"))
	if a.wikiAnswer == "" {
		lines = append(lines, a.styles.dim.Render("  nothing asked yet, /wiki <question>"))
	} else {
		lines = append(lines, a.styles.value.Render("  "+a.wikiAnswer))
	}
	lines = append(lines, "", a.styles.label.Render("Programming assistant"))
	if a.devAnswer == "" {
		lines = append(lines, a.styles.dim.Render("  nothing asked yet, /dev <question>"))
	} else {
		lines = append(lines, a.styles.value.Render("  "+a.devAnswer))
	}
	return lines
}

func (a *App) renderHelpView() string {
	var b strings.Builder
	b.WriteString("ChatDeck Commands\n\n")
	for _, c := range a.commands {
		b.WriteString(fmt.Sprintf("%-48s %s\n", c.usage, c.description))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) updateViewportSize() {
	if a.height == 0 {
		return
	}
	const fixed = 3
	height := a.height - fixed - a.helpHeight
	if height < 3 {
		height = 3
	}
	a.viewport.Height = height
	a.viewport.Width = a.width
}

func (a *App) updateInputWidth() {
	width := a.width
	if width <= 0 {
		width = 60
	}
	promptWidth := lipgloss.Width(a.input.Prompt)
	usable := width - promptWidth - 1
	if usable < 10 {
		usable = 10
	}
	a.input.Width = usable
}

func (a *App) updateHelp() {
	value := a.input.Value()
	if value == "" || !strings.HasPrefix(value, a.cfg.CommandPrefix) {
		a.showHelp = false
		a.helpView = ""
		a.helpHeight = 0
		return
	}

	token := value
	if idx := strings.IndexAny(value, " \t"); idx >= 0 {
		token = value[:idx]
	}

	bindings := a.matchingBindings(token)
	if len(bindings) == 0 {
		a.showHelp = false
		a.helpView = ""
		a.helpHeight = 0
		return
	}

	a.showHelp = true
	a.helper.Width = a.width
	view := a.helper.View(dynamicKeyMap{keys: bindings})
	view = strings.TrimRight(view, "\n")
	a.helpView = view
	a.helpHeight = countLines(view)
}

func (a *App) matchingBindings(prefix string) []key.Binding {
	prefix = strings.ToLower(prefix)
	var bindings []key.Binding
	for _, c := range a.commands {
		if strings.HasPrefix(strings.ToLower(c.trigger), prefix) {
			bindings = append(bindings, key.NewBinding(
				key.WithKeys(c.usage),
				key.WithHelp(c.usage, c.description),
			))
		}
	}
	return bindings
}

func (a *App) statusLine() string {
	status := "OFFLINE"
	username := "-"
	if a.loggedIn() {
		status = "ONLINE"
		username = a.session.User.Username
	}
	channel := "-"
	if c := a.ws.Selection.Channel(); c != nil {
		channel = c.Name
	}
	thread := "-"
	if t := a.ws.Selection.Thread(); t != nil {
		thread = t.ResolvedTitle()
	}

	parts := []string{
		a.styles.title.Render("ChatDeck"),
		a.styles.view.Render(strings.ToUpper(a.view.String())),
		a.statusValueStyle(status).Render(status),
		a.styles.label.Render("Gateway") + ": " + a.styles.value.Render(a.cfg.GatewayURL),
		a.styles.label.Render("User") + ": " + a.styles.value.Render(username),
		a.styles.label.Render("Channel") + ": " + a.styles.value.Render(channel),
		a.styles.label.Render("Thread") + ": " + a.styles.value.Render(thread),
	}

	return strings.Join(parts, " | ")
}

func (a *App) statusValueStyle(status string) lipgloss.Style {
	if strings.EqualFold(status, "ONLINE") {
		return a.styles.statusOnline
	}
	return a.styles.statusOffline
}

func (a *App) logLineView() string {
	labelStyle := a.styles.logLabel
	bodyStyle := a.styles.logBody
	if a.logLine.level == logLevelError {
		labelStyle = a.styles.logLabelError
		bodyStyle = a.styles.logBodyError
	}
	return labelStyle.Render(a.logLine.label) + " " + bodyStyle.Render(a.logLine.body)
}

func buildStyles() styleSet {
	base := lipgloss.NewStyle()
	return styleSet{
		title:         base.Foreground(lipgloss.Color("13")).Bold(true),
		view:          base.Foreground(lipgloss.Color("14")).Bold(true),
		statusOnline:  base.Foreground(lipgloss.Color("10")).Bold(true),
		statusOffline: base.Foreground(lipgloss.Color("9")).Bold(true),
		label:         base.Foreground(lipgloss.Color("8")),
		value:         base.Foreground(lipgloss.Color("15")),
		active:        base.Foreground(lipgloss.Color("10")).Bold(true),
		dim:           base.Foreground(lipgloss.Color("7")),
		logLabel:      base.Foreground(lipgloss.Color("11")).Bold(true),
		logBody:       base.Foreground(lipgloss.Color("7")),
		logLabelError: base.Foreground(lipgloss.Color("9")).Bold(true),
		logBodyError:  base.Foreground(lipgloss.Color("9")),
		help:          base.Foreground(lipgloss.Color("12")),
	}
}

func buildHomeContent() string {
	fig := figure.NewColorFigure("CHAT DECK", "3-d", "cyan", true)
	art := strings.TrimRight(fig.String(), "\n")
	info := []string{
		"Use /login or /register to get started.",
		"Use /channels to browse the workspace.",
		"Use /channel and /thread to pick a conversation.",
		"Type anything without a slash to send a message.",
		"Use /search to find messages, files and channels.",
		"Use /help to browse all commands.",
	}

	var b strings.Builder
	b.WriteString(art)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(info, "\n"))
	return b.String()
}

func wrapLines(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	const minWidth = 10
	if width < minWidth {
		width = minWidth
	}

	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		segment := line
		if segment == "" {
			wrapped = append(wrapped, "")
			continue
		}
		for len(segment) > 0 {
			if runewidth.StringWidth(segment) <= width {
				wrapped = append(wrapped, segment)
				break
			}
			cut := wrapCutIndex(segment, width)
			part := strings.TrimRight(segment[:cut], " ")
			if part == "" && cut > 0 {
				part = segment[:cut]
			}
			wrapped = append(wrapped, part)
			segment = strings.TrimLeft(segment[cut:], " ")
			if segment == "" {
				break
			}
		}
	}
	return wrapped
}

func wrapCutIndex(s string, limit int) int {
	var width int
	lastSpace := -1
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > limit {
			if lastSpace >= 0 {
				return lastSpace + 1
			}
			if width == 0 {
				return i + 1
			}
			return i
		}
		width += rw
		if unicode.IsSpace(r) {
			lastSpace = i
		}
	}
	return len(s)
}

type dynamicKeyMap struct {
	keys []key.Binding
}

func (d dynamicKeyMap) ShortHelp() []key.Binding {
	return d.keys
}

func (d dynamicKeyMap) FullHelp() [][]key.Binding {
	if len(d.keys) == 0 {
		return [][]key.Binding{}
	}
	return [][]key.Binding{d.keys}
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
