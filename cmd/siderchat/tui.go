package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bazelment/siderchat/chat"
	"github.com/bazelment/siderchat/internal/tui"
)

// eventBuffer sizes the sink channel so a fast stream does not stall on
// rendering.
const eventBuffer = 256

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat interface",
		Long: `Start the full-screen chat interface.

Logs are written only when --log-file (or log_file in the config) is set,
since the interface owns the terminal.`,
		Args: cobra.NoArgs,
		RunE: runTUI,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, logger, closeLog, err := setup(cmd, logFileOnly)
	if err != nil {
		return err
	}
	defer closeLog()

	events := chat.NewEventSink(eventBuffer)
	defer events.Close()
	conv := newConversation(cfg, logger, events)

	ctx, cancel := signalContext(cmd.Context(), cmd.ErrOrStderr())
	defer cancel()

	model := tui.NewModel(ctx, conv, events, tui.Options{
		Logger:       logger,
		GlamourStyle: cfg.GlamourStyle,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
