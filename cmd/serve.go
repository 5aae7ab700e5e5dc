package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/mvv-cli/internal/server"
)

var (
	servePort     int
	serveArtifact string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a preprocessed bundle over a read-only HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if serveArtifact != "" {
			cfg.Server.Artifact = serveArtifact
		}
		if cfg.Server.Artifact == "" {
			cfg.Server.Artifact = cfg.Output.Path
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		srv, err := server.Load(cfg.Server.Artifact)
		if err != nil {
			return err
		}
		return srv.Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveArtifact, "artifact", "", "bundle JSON to serve (default output.path)")
	rootCmd.AddCommand(serveCmd)
}
