package mcp

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"9fans.net/go/plan9"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultEventTimeout = 30 * time.Second
	maxEventLines       = 1000
)

// errEnough stops an event stream once the wait is satisfied.
var errEnough = errors.New("enough events")

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) handleList(_ context.Context, _ *mcpsdk.CallToolRequest, args ListInput) (*mcpsdk.CallToolResult, ListOutput, error) {
	p := cleanPath(args.Path)
	dirs, err := s.fs.List(p)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("list %s: %w", p, err)
	}
	out := ListOutput{Path: p, Entries: make([]FileInfo, 0, len(dirs))}
	for _, d := range dirs {
		out.Entries = append(out.Entries, FileInfo{
			Name:  d.Name,
			Mode:  d.Mode.String(),
			Size:  d.Length,
			IsDir: d.Mode&plan9.DMDIR != 0,
		})
	}
	s.logger.Debug("mcp list", "path", p, "entries", len(out.Entries))
	return nil, out, nil
}

func (s *Server) handleRead(_ context.Context, _ *mcpsdk.CallToolRequest, args ReadInput) (*mcpsdk.CallToolResult, ReadOutput, error) {
	p := cleanPath(args.Path)
	if p == "/event" {
		return nil, ReadOutput{}, fmt.Errorf("/event never ends; use wait_for_event")
	}
	data, err := s.fs.Read(p)
	if err != nil {
		return nil, ReadOutput{}, fmt.Errorf("read %s: %w", p, err)
	}
	out := ReadOutput{Path: p, Bytes: len(data)}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		data = data[:s.maxBytes]
		out.Truncated = true
	}
	out.Content = string(data)
	s.logger.Debug("mcp read", "path", p, "bytes", out.Bytes, "truncated", out.Truncated)
	return nil, out, nil
}

func (s *Server) handleWrite(_ context.Context, _ *mcpsdk.CallToolRequest, args WriteInput) (*mcpsdk.CallToolResult, any, error) {
	p := cleanPath(args.Path)
	if err := s.fs.Write(p, []byte(args.Data)); err != nil {
		s.logger.Info("mcp write failed", "path", p, "error", err)
		return nil, nil, fmt.Errorf("write %s: %w", p, err)
	}
	s.logger.Info("mcp write", "path", p, "bytes", len(args.Data))
	return textResult("Wrote %d bytes to %s", len(args.Data), p), nil, nil
}

func (s *Server) handleCreate(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateInput) (*mcpsdk.CallToolResult, any, error) {
	p := cleanPath(args.Path)
	perm := plan9.Perm(0o600)
	if args.Dir || path.Dir(p) == "/tag" {
		perm = plan9.DMDIR | 0o700
	}
	if err := s.fs.Create(p, perm, []byte(args.Data)); err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", p, err)
	}
	s.logger.Info("mcp create", "path", p, "dir", perm&plan9.DMDIR != 0)
	return textResult("Created %s", p), nil, nil
}

func (s *Server) handleRemove(_ context.Context, _ *mcpsdk.CallToolRequest, args RemoveInput) (*mcpsdk.CallToolResult, any, error) {
	p := cleanPath(args.Path)
	if err := s.fs.Remove(p); err != nil {
		return nil, nil, fmt.Errorf("remove %s: %w", p, err)
	}
	s.logger.Info("mcp remove", "path", p)
	return textResult("Removed %s", p), nil, nil
}

func (s *Server) handleWaitForEvent(ctx context.Context, _ *mcpsdk.CallToolRequest, args WaitForEventInput) (*mcpsdk.CallToolResult, WaitForEventOutput, error) {
	count := args.Count
	if count <= 0 {
		count = 1
	}
	count = min(count, maxEventLines)
	timeout := defaultEventTimeout
	if args.Timeout > 0 {
		timeout = time.Duration(args.Timeout) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ev, err := s.dial()
	if err != nil {
		return nil, WaitForEventOutput{}, err
	}
	defer ev.Close()

	out := WaitForEventOutput{Events: []string{}}
	found := false
	err = ev.Events(ctx, func(line string) error {
		out.Events = append(out.Events, line)
		if args.Pattern != "" {
			if strings.Contains(line, args.Pattern) {
				found = true
				return errEnough
			}
			if len(out.Events) >= maxEventLines {
				return errEnough
			}
			return nil
		}
		if len(out.Events) >= count {
			return errEnough
		}
		return nil
	})
	switch {
	case errors.Is(err, errEnough), err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		out.TimedOut = true
	default:
		return nil, WaitForEventOutput{}, fmt.Errorf("read /event: %w", err)
	}
	if args.Pattern != "" {
		out.Found = &found
	}
	return nil, out, nil
}
