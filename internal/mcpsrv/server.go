// Package mcpsrv exposes the analysis pipeline as an MCP tool so agents
// can request ordered diagnostics over stdio.
package mcpsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/lintmux/lintmux/internal/diag"
	"github.com/lintmux/lintmux/internal/dupes"
)

// CheckResult is the JSON payload returned by the lintmux_check tool.
// Diagnostics are already in presentation order.
type CheckResult struct {
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Duplicates  []dupes.Pair      `json:"duplicates"`
	Errors      int               `json:"errors"`
	Warnings    int               `json:"warnings"`
	Missing     []string          `json:"missing_tools,omitempty"`
}

// Checker runs a full analysis of the project at root, optionally
// narrowed by a filter query. Injected by the CLI so this package stays
// free of pipeline wiring.
type Checker func(ctx context.Context, root, filter string) (*CheckResult, error)

// Server is the stdio MCP server lifecycle.
type Server struct {
	mcp *server.MCPServer
}

// New builds the server and registers the lintmux_check tool.
func New(version string, check Checker) *Server {
	mcpServer := server.NewMCPServer(
		"lintmux",
		version,
		server.WithToolCapabilities(true),
	)
	AddCheckTool(mcpServer, check)
	return &Server{mcp: mcpServer}
}

// Serve blocks on stdio until the client disconnects or a shutdown
// signal arrives.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving MCP on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcp server: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Info("shutdown signal received")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddCheckTool registers lintmux_check on an MCP server. Composable so
// embedders can mount the tool on their own server instance.
func AddCheckTool(s *server.MCPServer, check Checker) {
	tool := mcp.NewTool(
		"lintmux_check",
		mcp.WithDescription(`Run eslint, tsc, prettier and jscpd against a TypeScript/JavaScript
project and return the merged diagnostics, ordered so that root causes
(declarations, upstream files) come before downstream noise.

The optional filter uses bleve query syntax over message, rule, source
and file, e.g. "rule:semi", "source:tsc AND unused".`),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path to the project root")),
		mcp.WithString("filter",
			mcp.Description("Optional bleve query narrowing the diagnostics")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createCheckHandler(check))
}

func createCheckHandler(check Checker) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, ok := argsMap["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			return mcp.NewToolResultError(fmt.Sprintf("path is not a directory: %s", path)), nil
		}

		filter, _ := argsMap["filter"].(string)

		result, err := check(ctx, path, filter)
		if err != nil {
			return nil, fmt.Errorf("check failed: %w", err)
		}

		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding result: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
