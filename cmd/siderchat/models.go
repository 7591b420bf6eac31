package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bazelment/siderchat/chat"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := chat.DefaultModel
			if cfg, err := loadConfig(cmd); err == nil && cfg.Model != "" {
				current = cfg.Model
			}
			out := cmd.OutOrStdout()
			for _, m := range chat.AvailableModels() {
				marker := "  "
				if m == current {
					marker = "* "
				}
				fmt.Fprintln(out, marker+m)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging the config file, environment
and flags. The token is redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			shown := *cfg
			shown.Token = cfg.RedactedToken()

			data, err := yaml.Marshal(&shown)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, string(data))
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nwarning: %v\n", err)
			}
			return nil
		},
	}
}
