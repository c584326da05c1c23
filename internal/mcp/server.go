// Package mcp serves the window manager's filesystem as MCP tools over
// stdio, so an assistant can inspect and drive the window manager the same
// way wmii ls, read and write do.
package mcp

import (
	"context"
	"log/slog"

	"9fans.net/go/plan9"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "wmii"
	ServerVersion = "0.1.0"

	// DefaultMaxBytes caps the text a single read returns.
	DefaultMaxBytes = 64 * 1024
)

// Filesystem is the part of an ipc.Client the tools use.
type Filesystem interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	Create(path string, perm plan9.Perm, data []byte) error
	Remove(path string) error
	List(path string) ([]*plan9.Dir, error)
	Events(ctx context.Context, fn func(line string) error) error
	Close() error
}

// Dialer opens a new session. Cancelling an event stream ends its
// session, so every wait_for_event call dials its own.
type Dialer func() (Filesystem, error)

// Server is the MCP server for the window manager filesystem.
type Server struct {
	mcpServer *mcpsdk.Server
	dial      Dialer
	fs        Filesystem
	logger    *slog.Logger
	maxBytes  int
}

// NewServer dials the session the file tools share.
func NewServer(dial Dialer, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fs, err := dial()
	if err != nil {
		return nil, err
	}
	s := &Server{
		dial:     dial,
		fs:       fs,
		logger:   logger,
		maxBytes: DefaultMaxBytes,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close ends the shared session.
func (s *Server) Close() error {
	return s.fs.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_files",
		Description: "List a directory of the wmii filesystem, such as /, /tag/sel or /tag/sel/1. Returns each entry's name, mode, size and whether it is a directory.",
	}, s.handleList)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "read_file",
		Description: "Read a file of the wmii filesystem, for example /def/font, /tag/sel/1/mode or /tag/sel/1/sel/name. Output is capped; /event cannot be read here, use wait_for_event instead.",
	}, s.handleRead)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "write_file",
		Description: "Write to a file of the wmii filesystem. Writing a ctl file runs one command per line, e.g. writing 'select mail' to /ctl or 'select right' to /tag/sel/ctl.",
	}, s.handleWrite)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_file",
		Description: "Create a view under /tag, a key binding under /keys or a label under /bar, optionally writing initial data to it.",
	}, s.handleCreate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_file",
		Description: "Remove a view, key binding or bar label.",
	}, s.handleRemove)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wait_for_event",
		Description: "Collect event lines from /event (e.g. 'CC 3' when a client appears, 'PN 2' when a view is selected) until count lines arrive, a line containing pattern arrives, or timeout seconds pass.",
	}, s.handleWaitForEvent)
}
