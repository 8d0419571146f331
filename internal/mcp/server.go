// Package mcp implements the Model Context Protocol (MCP) server for
// scopefs using the mcp-go library.
//
// The server exposes filesystem tools scoped to a set of allowed directory
// roots. Protocol traffic runs over stdin/stdout as JSON-RPC 2.0; all
// logging goes to stderr so it never corrupts the protocol stream.
package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"scopefs/internal/filemanager"
	"scopefs/internal/logging"
	"scopefs/internal/sandbox"
)

// Version is the server version reported over the protocol and by the CLI.
const Version = "1.0.0"

// Server represents an MCP server instance using mcp-go
type Server struct {
	roots       []string
	logger      *logging.AppLogger
	fileManager *filemanager.FileManager
	mcpServer   *server.MCPServer
}

// NewServer creates a server scoped to the given allowed roots. The roots
// must already be absolute and symlink-resolved (see config.ResolveRoots).
func NewServer(roots []string, logger *logging.AppLogger) *Server {
	guard := sandbox.NewGuard(sandbox.NewResolver(roots))

	s := &Server{
		roots:       guard.Roots(),
		logger:      logger,
		fileManager: filemanager.NewFileManager(guard, logger),
		mcpServer: server.NewMCPServer(
			"scopefs",
			Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// Serve runs the server over stdio until the client disconnects.
func (s *Server) Serve() error {
	s.logger.Info("Starting MCP server on stdio",
		"version", Version,
		"allowedRoots", len(s.roots),
	)
	for _, root := range s.roots {
		s.logger.Info("Serving directory", "root", root)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
