package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard is a small team task board backed by a Google spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.Version = "0.1.0"
	cmd.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default ~/.config/taskboard)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newMoveCmd(a),
		newMetricsCmd(a),
		newCheckCmd(a),
		newInitCmd(a),
		newHashPasswordCmd(a),
	)

	return cmd
}
