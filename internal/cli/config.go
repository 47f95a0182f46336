package cli

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings",
		Long: `Print the settings in effect after applying defaults: the file named by
--config, otherwise .arq.yaml in the working directory when present.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			cfg, err := rootOpts.settings()
			if err != nil {
				return f.Fail("failed to load settings", err)
			}
			if f.Format == "json" {
				return f.Success(cfg)
			}
			if err := cfg.Write(f.Writer); err != nil {
				return WrapExitError(ExitFailure, "failed to write output", err)
			}
			return nil
		},
	}
}
