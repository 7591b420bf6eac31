package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bazelment/siderchat/render"
)

type askFlags struct {
	markdown      bool
	verbose       bool
	showReasoning bool
	showUsage     bool
}

func newAskCmd() *cobra.Command {
	flags := &askFlags{}

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send one message and print the answer",
		Long: `Send one message and print the answer.

The prompt is taken from the arguments, or read from stdin when none are
given.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.markdown, "markdown", false, "Render the final answer as markdown instead of streaming it")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show progress statuses")
	cmd.Flags().BoolVar(&flags.showReasoning, "show-reasoning", false, "Print reasoning text")
	cmd.Flags().BoolVar(&flags.showUsage, "usage", false, "Print token usage after the answer")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string, flags *askFlags) error {
	text := strings.Join(args, " ")
	if text == "" {
		var err error
		text, err = readFromStdin()
		if err != nil {
			return fmt.Errorf("failed to read prompt: %w", err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("prompt is required (pass as argument or via stdin)")
	}

	cfg, logger, closeLog, err := setup(cmd, logQuiet)
	if err != nil {
		return err
	}
	defer closeLog()

	out := cmd.OutOrStdout()
	renderer := render.NewRenderer(out, flags.verbose, cfg.NoColor)
	renderer.SetShowReasoning(flags.showReasoning)
	renderer.SetStreamAnswer(!flags.markdown)
	conv := newConversation(cfg, logger, renderer)

	ctx, cancel := signalContext(cmd.Context(), cmd.ErrOrStderr())
	defer cancel()

	result, err := conv.Send(ctx, text)
	if err != nil {
		return err
	}

	if flags.markdown {
		md, mdErr := render.NewMarkdownRenderer(render.Width(os.Stdout), cfg.GlamourStyle)
		rendered := result.Text
		if mdErr == nil {
			rendered, mdErr = md.Render(result.Text)
		}
		if mdErr != nil {
			logger.Warn("markdown rendering failed", "error", mdErr)
			rendered = result.Text
		}
		fmt.Fprintln(out, rendered)
	}

	if flags.showUsage {
		renderer.TurnComplete(result)
	} else if !flags.markdown {
		fmt.Fprintln(out)
	}
	return nil
}

func readFromStdin() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}

	var b strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), scanner.Err()
}
