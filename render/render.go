// Package render provides ANSI-colored terminal rendering for chat turns.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/bazelment/siderchat/chat"
)

// ANSI color codes - chosen to work on both light and dark backgrounds
const (
	ColorReset   = "\x1b[0m"
	ColorDim     = "\x1b[2m"
	ColorItalic  = "\x1b[3m"
	ColorBold    = "\x1b[1m"
	ColorRed     = "\x1b[31m"
	ColorGreen   = "\x1b[32m"
	ColorYellow  = "\x1b[33m"
	ColorBlue    = "\x1b[34m"
	ColorMagenta = "\x1b[35m"
	ColorCyan    = "\x1b[36m"
	ColorGray    = "\x1b[90m"
)

const defaultWidth = 80

// Renderer writes a streaming turn to a terminal. It implements chat.Sink:
// the full-text updates it receives are diffed against what is already on
// screen and only the new suffix is printed.
type Renderer struct {
	out io.Writer
	mu  sync.Mutex

	reasoningShown string
	answerShown    string

	verbose       bool
	noColor       bool
	hideReasoning bool
	hideAnswer    bool
	inReasoning   bool
	midLine       bool
}

var _ chat.Sink = (*Renderer)(nil)

// NewRenderer creates a new renderer writing to the given output.
// If verbose is true, progress statuses are printed as they change.
// If noColor is true, ANSI color codes are suppressed.
func NewRenderer(out io.Writer, verbose, noColor bool) *Renderer {
	if !noColor {
		noColor = !isTerminal(out)
	}
	return &Renderer{
		out:     out,
		verbose: verbose,
		noColor: noColor,
	}
}

// SetShowReasoning toggles printing of reasoning text.
func (r *Renderer) SetShowReasoning(show bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hideReasoning = !show
}

// SetStreamAnswer toggles streaming of answer text. Callers that render
// the final answer themselves (e.g. as markdown) turn it off.
func (r *Renderer) SetStreamAnswer(stream bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hideAnswer = !stream
}

// isTerminal checks if the writer is a terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Width returns the terminal width of w, or a default when w is not a
// terminal.
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWidth
}

// color returns the color code if colors are enabled, empty string otherwise.
func (r *Renderer) color(c string) string {
	if r.noColor {
		return ""
	}
	return c
}

// SessionInfo prints conversation metadata.
func (r *Renderer) SessionInfo(conversationID, model string, think, search bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parts := []string{}
	if model != "" {
		parts = append(parts, "model="+model)
	}
	parts = append(parts, fmt.Sprintf("think=%s", onOff(think)), fmt.Sprintf("search=%s", onOff(search)))
	if conversationID != "" {
		parts = append(parts, "conversation="+truncate(conversationID, 16))
	}
	fmt.Fprintf(r.out, "%s[%s]%s\n", r.color(ColorGray), strings.Join(parts, " "), r.color(ColorReset))
}

// Info prints a neutral one-line message.
func (r *Renderer) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakLine()
	fmt.Fprintf(r.out, "%s%s%s\n", r.color(ColorGray), msg, r.color(ColorReset))
}

// OnTurnCreated starts a new assistant block.
func (r *Renderer) OnTurnCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reasoningShown = ""
	r.answerShown = ""
	r.inReasoning = false
	r.breakLine()
}

// OnReasoningUpdate prints reasoning in dim italic.
func (r *Renderer) OnReasoningUpdate(fullText string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hideReasoning {
		return
	}
	suffix := newSuffix(r.reasoningShown, fullText)
	r.reasoningShown = fullText
	if suffix == "" {
		return
	}
	fmt.Fprintf(r.out, "%s%s%s%s", r.color(ColorDim), r.color(ColorItalic), suffix, r.color(ColorReset))
	r.inReasoning = true
	r.midLine = !strings.HasSuffix(suffix, "\n")
}

// OnAnswerUpdate prints the answer as plain text.
func (r *Renderer) OnAnswerUpdate(fullText string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hideAnswer {
		return
	}
	// Add a blank line when transitioning from reasoning to text
	if r.inReasoning {
		fmt.Fprint(r.out, "\n\n")
		r.inReasoning = false
		r.midLine = false
	}
	suffix := newSuffix(r.answerShown, fullText)
	r.answerShown = fullText
	if suffix == "" {
		return
	}
	fmt.Fprint(r.out, suffix)
	r.midLine = !strings.HasSuffix(suffix, "\n")
}

// OnSearchNotification prints the search panel. A terminal cannot retract
// it, so clearing is a no-op.
func (r *Renderer) OnSearchNotification(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakLine()
	width := Width(r.out) - 2
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(r.out, "%s│ %s%s\n", r.color(ColorBlue), truncate(line, width), r.color(ColorReset))
	}
}

func (r *Renderer) OnSearchCleared() {}

// OnStatus prints status changes in verbose mode. Errors are always shown.
func (r *Renderer) OnStatus(text string, kind chat.StatusKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if kind != chat.StatusError && !r.verbose {
		return
	}
	colorCode := ColorGray
	switch kind {
	case chat.StatusSuccess:
		colorCode = ColorGreen
	case chat.StatusError:
		colorCode = ColorRed
	}
	r.breakLine()
	fmt.Fprintf(r.out, "%s[Status]%s %s\n", r.color(colorCode), r.color(ColorReset), text)
	r.inReasoning = false
}

func (r *Renderer) OnStatusCleared() {}

// TurnComplete prints a summary of the completed turn.
func (r *Renderer) TurnComplete(result *chat.TurnResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakLine()
	rule := strings.Repeat("─", min(Width(r.out), 55))
	fmt.Fprintf(r.out, "%s%s%s\n", r.color(ColorDim), rule, r.color(ColorReset))

	status := "✓"
	colorCode := ColorGreen
	if !result.Completed {
		status = "⚠"
		colorCode = ColorYellow
	}

	fmt.Fprintf(r.out, "%s%s Turn complete (%.1fs, %d input / %d output tokens)%s\n",
		r.color(colorCode), status, result.Duration.Seconds(), result.InputTokens, result.OutputTokens, r.color(ColorReset))
}

// Error prints an error message.
func (r *Renderer) Error(err error, context string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakLine()
	fmt.Fprintf(r.out, "%s[Error: %s]%s %v\n", r.color(ColorRed), context, r.color(ColorReset), err)
}

// breakLine ends a partially written line. Callers hold mu.
func (r *Renderer) breakLine() {
	if r.midLine {
		fmt.Fprintln(r.out)
		r.midLine = false
	}
}

// newSuffix returns the part of full not yet shown. If full does not
// extend shown (the text was reset), all of full is new.
func newSuffix(shown, full string) string {
	if strings.HasPrefix(full, shown) {
		return full[len(shown):]
	}
	return full
}

// truncate shortens s to at most max display columns.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	return runewidth.Truncate(s, max, "...")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
