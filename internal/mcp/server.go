// Package mcp provides an MCP (Model Context Protocol) server exposing the
// polyrc store to agents over stdio.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tjirsch/polyrc/internal/store"
)

// Server wraps the MCP SDK server around an open store.
type Server struct {
	server *sdk.Server
	store  *store.Store
}

// Config holds server configuration.
type Config struct {
	Name    string // server name (e.g. "polyrc")
	Version string
	Store   *store.Store
}

// NewServer creates an MCP server with the polyrc tools registered.
func NewServer(cfg *Config) (*Server, error) {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{})

	s := &Server{server: mcpServer, store: cfg.Store}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until the client disconnects or a signal arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}
