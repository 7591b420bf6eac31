// Package commands parses and executes the slash commands shared by the
// REPL and the TUI.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bazelment/siderchat/chat"
)

// Name is a slash command, including the leading slash.
type Name string

const (
	Model   Name = "/model"
	Models  Name = "/models"
	Think   Name = "/think"
	Search  Name = "/search"
	Reset   Name = "/reset"
	History Name = "/history"
	Help    Name = "/help"
	Exit    Name = "/exit"
)

// All lists the commands in help order.
var All = []Name{Model, Models, Think, Search, Reset, History, Help, Exit}

var usage = map[Name]string{
	Model:   "/model <name>",
	Models:  "/models",
	Think:   "/think on|off",
	Search:  "/search on|off",
	Reset:   "/reset",
	History: "/history",
	Help:    "/help",
	Exit:    "/exit",
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Command is one parsed input line.
type Command struct {
	Name Name
	Args []string
}

// Parse recognizes a slash command. It returns false for ordinary chat
// input, including text that merely starts with a slash followed by a
// space.
func Parse(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Command{}, false
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] == "/" {
		return Command{}, false
	}
	return Command{Name: Name(strings.ToLower(fields[0])), Args: fields[1:]}, true
}

// Known reports whether n is a supported command.
func Known(n Name) bool {
	_, ok := usage[n]
	return ok
}

// Usage returns the usage line for n.
func Usage(n Name) string {
	return usage[n]
}

// HelpText lists every command on one line.
func HelpText() string {
	parts := make([]string, len(All))
	for i, n := range All {
		parts[i] = usage[n]
	}
	return "Commands: " + strings.Join(parts, ", ")
}

// Target is the conversation state a command manipulates.
type Target interface {
	Settings() chat.Settings
	SetModel(model string)
	SetThink(enabled bool)
	SetSearch(enabled bool)
	History() []chat.Message
	Reset() error
}

var _ Target = (*chat.Conversation)(nil)

// Result is what a front end shows after a command.
type Result struct {
	Output string
	Exit   bool
}

// Execute applies cmd to t.
func Execute(t Target, cmd Command) (Result, error) {
	switch cmd.Name {
	case Exit:
		return Result{Output: "Bye!", Exit: true}, nil

	case Help:
		return Result{Output: HelpText()}, nil

	case Reset:
		if err := t.Reset(); err != nil {
			return Result{}, err
		}
		return Result{Output: "Conversation cleared."}, nil

	case Models:
		current := t.Settings().Model
		lines := make([]string, 0, len(chat.AvailableModels()))
		for _, m := range chat.AvailableModels() {
			marker := "  "
			if m == current {
				marker = "* "
			}
			lines = append(lines, marker+m)
		}
		return Result{Output: strings.Join(lines, "\n")}, nil

	case Model:
		if len(cmd.Args) == 0 {
			return Result{Output: "Model: " + t.Settings().Model}, nil
		}
		name := cmd.Args[0]
		if !chat.IsKnownModel(name) {
			return Result{}, fmt.Errorf("unknown model %q, use /models to list", name)
		}
		t.SetModel(name)
		return Result{Output: "Model set to " + name}, nil

	case Think:
		on, err := parseToggle(cmd)
		if err != nil {
			return Result{}, err
		}
		t.SetThink(on)
		return Result{Output: "Think mode: " + onOff(on)}, nil

	case Search:
		on, err := parseToggle(cmd)
		if err != nil {
			return Result{}, err
		}
		t.SetSearch(on)
		return Result{Output: "Search: " + onOff(on)}, nil

	case History:
		return Result{Output: FormatHistory(t.History())}, nil

	default:
		return Result{}, fmt.Errorf("%w %s, try /help", ErrUnknownCommand, cmd.Name)
	}
}

func parseToggle(cmd Command) (bool, error) {
	if len(cmd.Args) != 1 {
		return false, fmt.Errorf("%w: %s", ErrUsage, usage[cmd.Name])
	}
	switch strings.ToLower(cmd.Args[0]) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUsage, usage[cmd.Name])
	}
}

// FormatHistory renders the history one message per paragraph.
func FormatHistory(history []chat.Message) string {
	if len(history) == 0 {
		return "(no messages)"
	}
	var b strings.Builder
	for i, m := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s: %s", i+1, m.Role, m.Content)
	}
	return b.String()
}

// Complete returns candidates for the word being typed. It backs readline
// and TUI completion.
func Complete(line string) []string {
	fields := strings.Fields(line)
	trailingSpace := strings.HasSuffix(line, " ")

	if len(fields) == 0 || (len(fields) == 1 && !trailingSpace) {
		prefix := ""
		if len(fields) == 1 {
			prefix = strings.ToLower(fields[0])
		}
		var out []string
		for _, n := range All {
			if strings.HasPrefix(string(n), prefix) {
				out = append(out, string(n))
			}
		}
		return out
	}

	var candidates []string
	switch Name(strings.ToLower(fields[0])) {
	case Model:
		candidates = chat.AvailableModels()
	case Think, Search:
		candidates = []string{"on", "off"}
	default:
		return nil
	}

	prefix := ""
	if !trailingSpace && len(fields) > 1 {
		prefix = fields[len(fields)-1]
	}
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
