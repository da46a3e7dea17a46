package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mindscribe/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var development bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			level := ""
			if ctx.logLevelFlag != nil {
				level = *ctx.logLevelFlag
			}
			return daemonrun.Run(contextOf(cmd), cfg, daemonrun.Options{
				LogLevel:    level,
				Development: development,
				Ready: func(address string) {
					fmt.Fprintf(cmd.OutOrStdout(), "Serving MindScribe API on http://%s\n", address)
				},
			})
		},
	}
	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in logs")
	return cmd
}
