package client

import "strings"

// handleTabCompletion extends the current input to the longest unambiguous
// command, or to a keyword argument for commands that take one.
func (a *App) handleTabCompletion() {
	value := a.input.Value()
	if value == "" {
		return
	}

	cursor := a.input.Position()
	runes := []rune(value)
	if cursor != len(runes) {
		return
	}
	if !strings.HasPrefix(value, a.cfg.CommandPrefix) {
		return
	}

	if idx := strings.IndexAny(value, " \t"); idx >= 0 {
		a.completeArgument(value[:idx], strings.TrimLeft(value[idx:], " \t"))
		return
	}

	matches := make([]string, 0)
	for _, cmd := range a.commands {
		if strings.HasPrefix(cmd.trigger, value) {
			matches = append(matches, cmd.trigger)
		}
	}
	if len(matches) == 0 {
		return
	}

	prefix := longestCommonPrefix(matches)
	if len(prefix) <= len(value) {
		return
	}

	a.input.SetValue(prefix)
	a.input.CursorEnd()
}

// completeArgument handles the first argument of commands whose argument is
// a fixed keyword set.
func (a *App) completeArgument(trigger, partial string) {
	var options []string
	switch trigger {
	case "/search":
		options = []string{"messages", "files", "channels", "all"}
	case "/view":
		options = []string{"chat", "search", "presence", "bots", "help"}
	case "/type":
		options = []string{"text", "audio", "file"}
	default:
		return
	}
	if strings.ContainsAny(partial, " \t") {
		return
	}

	matches := make([]string, 0, len(options))
	for _, opt := range options {
		if strings.HasPrefix(opt, partial) {
			matches = append(matches, opt)
		}
	}
	if len(matches) == 0 {
		return
	}

	prefix := longestCommonPrefix(matches)
	if len(prefix) <= len(partial) {
		return
	}

	a.input.SetValue(trigger + " " + prefix)
	a.input.CursorEnd()
}

func longestCommonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := values[0]
	for _, s := range values[1:] {
		for !strings.HasPrefix(s, prefix) {
			if prefix == "" {
				return ""
			}
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
