// Command siderchat is a terminal client for a streaming chat assistant.
//
// Commands:
//   - chat: interactive REPL (default)
//   - tui: full-screen interface
//   - ask: send one message and print the answer
//   - models: list available models
//   - config: print the effective configuration
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bazelment/siderchat/chat"
	"github.com/bazelment/siderchat/client"
	"github.com/bazelment/siderchat/internal/config"
	"github.com/bazelment/siderchat/internal/logging"
)

// Persistent flag values. Only flags the user actually set override the
// config file and environment.
var (
	configPath   string
	baseURL      string
	token        string
	model        string
	logLevel     string
	logFile      string
	glamourStyle string
	chatTimeout  time.Duration
	think        bool
	search       bool
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "siderchat",
	Short: "Terminal client for a streaming chat assistant",
	Long: `siderchat talks to an assistant service over a streaming messages API.

Settings come from ~/.config/siderchat/config.yaml, then the environment
(SIDER_API_TOKEN, SIDER_BASE_URL, SIDERCHAT_MODEL, LOG_LEVEL), then flags.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, &chatFlags{})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default: ~/.config/siderchat/config.yaml)")
	pf.StringVar(&baseURL, "base-url", "", "Service base URL")
	pf.StringVar(&token, "token", "", "API token")
	pf.StringVarP(&model, "model", "m", "", "Model to use")
	pf.BoolVar(&think, "think", true, "Enable reasoning")
	pf.BoolVar(&search, "search", false, "Enable web search")
	pf.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "Write logs to this file")
	pf.BoolVar(&noColor, "no-color", false, "Disable ANSI colors")
	pf.DurationVar(&chatTimeout, "timeout", 0, "Per-turn timeout (0 uses the config value)")
	pf.StringVar(&glamourStyle, "glamour-style", "", "Markdown style: auto, dark, light, notty")

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newTUICmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newConfigCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves file, environment and flags, in increasing
// precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, required := configPath, true
	if path == "" {
		path, required = config.DefaultPath(), false
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("token") {
		cfg.Token = token
	}
	if flags.Changed("model") {
		cfg.Model = model
	}
	if flags.Changed("think") {
		cfg.Think = think
	}
	if flags.Changed("search") {
		cfg.Search = search
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("no-color") {
		cfg.NoColor = noColor
	}
	if flags.Changed("timeout") && chatTimeout > 0 {
		cfg.ChatTimeout = chatTimeout
	}
	if flags.Changed("glamour-style") {
		cfg.GlamourStyle = glamourStyle
	}
	return cfg, nil
}

// logMode selects where a command's logs go when no log file is set.
type logMode int

const (
	// logStderr always writes to stderr.
	logStderr logMode = iota
	// logQuiet writes to stderr only when --log-level was given.
	logQuiet
	// logFileOnly never writes to stderr; full-screen UIs own the terminal.
	logFileOnly
)

// setup loads and validates config and builds the logger.
func setup(cmd *cobra.Command, mode logMode) (*config.Config, *slog.Logger, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	var (
		logger   *slog.Logger
		closeLog = func() {}
	)
	switch {
	case cfg.LogFile == "" && mode == logFileOnly,
		cfg.LogFile == "" && mode == logQuiet && !cmd.Flags().Changed("log-level"):
		logger = logging.Discard()
	default:
		logger, closeLog, err = logging.Open(cfg.LogLevel, cfg.LogFile, mode == logStderr)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	logger.Debug("configuration loaded",
		"base_url", cfg.BaseURL,
		"model", cfg.Model,
		"think", cfg.Think,
		"search", cfg.Search,
		"token", cfg.RedactedToken())
	return cfg, logger, closeLog, nil
}

// newConversation wires the HTTP transport to a conversation. The timeout
// is applied by the transport so it also bounds streaming.
func newConversation(cfg *config.Config, logger *slog.Logger, sink chat.Sink) *chat.Conversation {
	transport := client.New(cfg.BaseURL, cfg.Token,
		client.WithLogger(logger),
		client.WithTimeout(cfg.ChatTimeout),
		client.WithUserAgent("siderchat/"+version),
	)
	return chat.NewConversation(transport,
		chat.WithModel(cfg.Model),
		chat.WithThink(cfg.Think),
		chat.WithSearch(cfg.Search),
		chat.WithSink(sink),
		chat.WithLogger(logger),
	)
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context, out io.Writer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(out, "\nInterrupted")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

const version = "0.1.0"
