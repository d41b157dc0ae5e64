package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bnema/sshgw/internal/domain"
)

const (
	toolExecuteCommand      = "execute_command"
	toolListConnections     = "list_connections"
	toolListAllowedCommands = "list_allowed_commands"
	toolReloadConfig        = "reload_config"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(executeCommandTool(), s.handleExecuteCommand)
	s.mcpServer.AddTool(listConnectionsTool(), s.handleListConnections)
	s.mcpServer.AddTool(listAllowedCommandsTool(), s.handleListAllowedCommands)
	s.mcpServer.AddTool(reloadConfigTool(), s.handleReloadConfig)
}

func executeCommandTool() mcp.Tool {
	return mcp.NewTool(toolExecuteCommand,
		mcp.WithDescription("Execute an allowlisted command on a configured remote server. Returns exit_code, stdout, stderr, success and error."),
		mcp.WithString("connection",
			mcp.Required(),
			mcp.Description("Name of the configured connection"),
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Command line to run; the executable must be in the allowlist"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Timeout in seconds (default: the configured timeout)"),
		),
	)
}

func listConnectionsTool() mcp.Tool {
	return mcp.NewTool(toolListConnections,
		mcp.WithDescription("List the names of configured SSH connections"),
	)
}

func listAllowedCommandsTool() mcp.Tool {
	return mcp.NewTool(toolListAllowedCommands,
		mcp.WithDescription("List the executables the gateway allows"),
	)
}

func reloadConfigTool() mcp.Tool {
	return mcp.NewTool(toolReloadConfig,
		mcp.WithDescription("Reload the configuration file; sessions for changed connections are closed"),
	)
}

func (s *Server) handleExecuteCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	connection := mcp.ParseString(req, "connection", "")
	command := mcp.ParseString(req, "command", "")
	timeoutSeconds := mcp.ParseInt(req, "timeout", 0)

	if connection == "" {
		return mcp.NewToolResultError("connection is required"), nil
	}
	if command == "" {
		return mcp.NewToolResultError("command is required"), nil
	}
	if timeoutSeconds < 0 {
		return mcp.NewToolResultError("timeout must not be negative"), nil
	}

	result, err := s.gateway.Execute(ctx, connection, command, time.Duration(timeoutSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, domain.ErrPolicyViolation) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	return jsonResult(result)
}

func (s *Server) handleListConnections(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.gateway.ListConnections())
}

func (s *Server) handleListAllowedCommands(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.gateway.ListAllowedCommands())
}

func (s *Server) handleReloadConfig(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.gateway.Reload(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("reload requested by client failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("configuration reloaded"), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(string(data)), nil
}
