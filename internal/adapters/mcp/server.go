package mcp

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/bnema/sshgw/internal/ports"
)

// Server exposes a gateway over the Model Context Protocol.
type Server struct {
	gateway   ports.Gateway
	mcpServer *server.MCPServer
	logger    zerolog.Logger
}

func NewServer(gateway ports.Gateway, name, version string, logger zerolog.Logger) *Server {
	s := &Server{
		gateway: gateway,
		mcpServer: server.NewMCPServer(name, version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
		logger: logger,
	}

	s.registerTools()
	s.registerResources()

	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio speaks JSON-RPC over in/out until ctx is cancelled or in closes.
// Nothing else may write to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(s.logger, "", 0))

	s.logger.Info().Msg("mcp stdio server started")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve mcp stdio: %w", err)
	}

	return nil
}
