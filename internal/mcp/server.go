package mcp

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"ghscout/internal/extract"
	"ghscout/internal/github"
	"ghscout/internal/license"
	"ghscout/internal/repomap"
	"ghscout/internal/search"
)

// Toolset bundles the domain services the tools are built on. Any nil
// service disables its tools.
type Toolset struct {
	Searcher   *search.Searcher
	Usage      *search.UsageFinder
	Compatible *search.CompatibleFinder
	Guide      *search.GuideGenerator
	Simpler    *search.SimplerFinder
	Validator  *search.Validator
	Mapper     *repomap.Mapper
	Extractor  *extract.Extractor
	Licenses   *license.Checker
	Limiter    *github.Limiter
}

// Server is the MCP stdio server.
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *slog.Logger
	version string
	toolset Toolset
	tools   map[string]ToolHandler
}

// NewServer creates a server over stdin/stdout.
func NewServer(version string, toolset Toolset, logger *slog.Logger) *Server {
	s := &Server{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		logger:  logger,
		version: version,
		toolset: toolset,
		tools:   make(map[string]ToolHandler),
	}
	s.registerTools()
	return s
}

// Start runs the message loop until stdin closes.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("MCP server starting", "version", s.version)

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("MCP server shutting down (EOF)")
				return nil
			}
			s.logger.Error("Error reading message", "error", err.Error())
			if msg != nil && msg.Id != nil {
				_ = s.writeError(msg.Id, ParseError, "Failed to parse message: "+err.Error())
			}
			continue
		}

		response := s.handleMessage(ctx, msg)
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("Error writing response", "error", err.Error())
			}
		}

		select {
		case <-ctx.Done():
			s.logger.Info("MCP server shutting down (context cancelled)")
			return ctx.Err()
		default:
		}
	}
}

// SetStdin sets the input stream (for testing).
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil
}

// SetStdout sets the output stream (for testing).
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}
