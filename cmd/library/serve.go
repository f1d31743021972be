package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/bookhaven/library-app/config"
	"github.com/bookhaven/library-app/internal/app"
)

func newServeCommand() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := []config.Option{
				config.WithWriteTimeout(time.Minute),
			}
			if debug {
				ops = append(ops, config.WithLogLevel(zapcore.DebugLevel))
			}
			return app.Run(config.NewConfig(ops...))
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}
