package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"

	"github.com/bazelment/siderchat/chat"
	"github.com/bazelment/siderchat/internal/commands"
	"github.com/bazelment/siderchat/internal/config"
	"github.com/bazelment/siderchat/render"
)

type chatFlags struct {
	verbose       bool
	hideReasoning bool
	noHistory     bool
}

func newChatCmd() *cobra.Command {
	flags := &chatFlags{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session in the terminal.

Answers stream as they arrive. Lines starting with / are commands;
type /help to list them. Ctrl-C cancels a running turn, Ctrl-D exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show progress statuses")
	cmd.Flags().BoolVar(&flags.hideReasoning, "hide-reasoning", false, "Do not print reasoning text")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not persist input history")

	return cmd
}

func runChat(cmd *cobra.Command, flags *chatFlags) error {
	cfg, logger, closeLog, err := setup(cmd, logQuiet)
	if err != nil {
		return err
	}
	defer closeLog()

	out := os.Stdout
	renderer := render.NewRenderer(out, flags.verbose, cfg.NoColor)
	renderer.SetShowReasoning(!flags.hideReasoning)
	conv := newConversation(cfg, logger, renderer)

	rlCfg := &readline.Config{
		Prompt:          prompt(conv.Settings().Model),
		AutoComplete:    slashCompleter{},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}
	if !flags.noHistory {
		rlCfg.HistoryFile = filepath.Join(filepath.Dir(config.DefaultPath()), "history")
	}
	rl, err := readline.NewFromConfig(rlCfg)
	if err != nil {
		return fmt.Errorf("init line editor: %w", err)
	}
	defer rl.Close()

	s := conv.Settings()
	renderer.SessionInfo("", s.Model, s.Think, s.Search)
	renderer.Info(commands.HelpText())

	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if c, ok := commands.Parse(line); ok {
			res, err := commands.Execute(conv, c)
			if err != nil {
				renderer.Error(err, "command")
				continue
			}
			if res.Output != "" {
				fmt.Fprintln(out, res.Output)
			}
			if res.Exit {
				return nil
			}
			rl.SetPrompt(prompt(conv.Settings().Model))
			continue
		}

		runTurn(cmd.Context(), conv, renderer, line)
	}
}

// runTurn sends one message. SIGINT or SIGTERM during streaming cancels the
// turn but not the session.
func runTurn(parent context.Context, conv *chat.Conversation, renderer *render.Renderer, text string) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signalContext(parent, io.Discard)
	defer cancel()

	result, err := conv.Send(ctx, text)
	if err != nil {
		// Request errors were already surfaced through the sink.
		var reqErr *chat.RequestError
		if !errors.As(err, &reqErr) {
			renderer.Error(err, "send")
		} else if !chat.IsRecoverable(err) {
			renderer.Info("check the token and base URL in your config")
		}
		return
	}
	renderer.TurnComplete(result)
}

func prompt(model string) string {
	return fmt.Sprintf("[%s] > ", model)
}

// slashCompleter completes command names and their arguments.
type slashCompleter struct{}

func (slashCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	if !strings.HasPrefix(text, "/") {
		return nil, 0
	}
	word := text[strings.LastIndexByte(text, ' ')+1:]

	var out [][]rune
	for _, c := range commands.Complete(text) {
		if strings.HasPrefix(c, word) {
			out = append(out, []rune(c[len(word):]))
		}
	}
	return out, len([]rune(word))
}
