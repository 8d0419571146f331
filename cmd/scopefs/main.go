// Package main is the entry point for the scopefs MCP server.
//
// The server is scoped to a set of allowed directory roots given as
// command-line arguments, or loaded from the config file when no arguments
// are given. After resolving the roots it serves the MCP protocol over
// stdin/stdout until the client disconnects. All diagnostics go to stderr.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"scopefs/internal/config"
	"scopefs/internal/logging"
	"scopefs/internal/mcp"
)

func main() {
	appLogger := logging.NewAppLogger()

	var configPath string

	rootCmd := &cobra.Command{
		Use:   "scopefs [allowed-directory]...",
		Short: "MCP filesystem server scoped to allowed directories",
		Long: "scopefs serves filesystem tools over the Model Context Protocol. " +
			"Every operation is confined to the allowed directory roots; " +
			"paths that resolve outside them are rejected.",
		Version:       mcp.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := args
			if len(dirs) == 0 {
				var cfg *config.Config
				var err error
				if configPath != "" {
					cfg, err = config.LoadFile(configPath)
				} else {
					cfg, err = config.Load()
				}
				if err != nil {
					return err
				}
				dirs = cfg.AllowedRoots
				appLogger.Debug("Loaded allowed roots from config", "count", len(dirs))
			}

			roots, err := config.ResolveRoots(dirs)
			if err != nil {
				return err
			}

			return mcp.NewServer(roots, appLogger).Serve()
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config file (default: "+config.DefaultPath()+")")

	if err := rootCmd.Execute(); err != nil {
		appLogger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
