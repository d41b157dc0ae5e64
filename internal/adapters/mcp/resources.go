package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	resourceConnections   = "ssh-mcp://connections"
	resourceCommands      = "ssh-mcp://commands"
	resourceConfiguration = "ssh-mcp://configuration"

	jsonMIMEType = "application/json"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource(resourceConnections, "connections",
			mcp.WithResourceDescription("Names of configured SSH connections"),
			mcp.WithMIMEType(jsonMIMEType),
		),
		s.jsonResource(func() any { return s.gateway.ListConnections() }),
	)
	s.mcpServer.AddResource(
		mcp.NewResource(resourceCommands, "commands",
			mcp.WithResourceDescription("Allowlisted executables"),
			mcp.WithMIMEType(jsonMIMEType),
		),
		s.jsonResource(func() any { return s.gateway.ListAllowedCommands() }),
	)
	s.mcpServer.AddResource(
		mcp.NewResource(resourceConfiguration, "configuration",
			mcp.WithResourceDescription("Gateway configuration with credentials redacted"),
			mcp.WithMIMEType(jsonMIMEType),
		),
		s.jsonResource(func() any { return s.gateway.SanitizedConfig() }),
	)
}

func (s *Server) jsonResource(read func() any) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.MarshalIndent(read(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode resource %s: %w", req.Params.URI, err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: jsonMIMEType,
				Text:     string(data),
			},
		}, nil
	}
}
