package chat

import "log/slog"

// Config holds conversation configuration.
type Config struct {
	Sink   Sink
	Logger *slog.Logger
	Model  string
	Think  bool
	Search bool
}

// Option is a functional option for configuring a Conversation.
type Option func(*Config)

// WithModel sets the model to use.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithThink toggles extended reasoning.
func WithThink(enabled bool) Option {
	return func(c *Config) {
		c.Think = enabled
	}
}

// WithSearch toggles the web_search tool.
func WithSearch(enabled bool) Option {
	return func(c *Config) {
		c.Search = enabled
	}
}

// WithSink sets the presentation sink.
func WithSink(s Sink) Option {
	return func(c *Config) {
		c.Sink = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Model: DefaultModel,
		Think: true,
		Sink:  NoOpSink{},
	}
}
