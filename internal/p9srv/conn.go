package p9srv

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"9fans.net/go/plan9"
)

// replyBacklog is how many replies may wait for a slow client before the
// connection is dropped.
const replyBacklog = 256

// Request is one decoded message. A nil Fcall reports that the client hung
// up.
type Request struct {
	Conn  *Conn
	Fcall *plan9.Fcall
}

// Conn is one client connection. Its reader and writer run on their own
// goroutines; the session state lives in the Server.
type Conn struct {
	rwc    io.ReadWriteCloser
	remote string
	logger *slog.Logger
	out    chan *plan9.Fcall

	done      chan struct{}
	closeOnce sync.Once
}

func newConn(rwc io.ReadWriteCloser, remote string, logger *slog.Logger) *Conn {
	return &Conn{
		rwc:    rwc,
		remote: remote,
		logger: logger,
		out:    make(chan *plan9.Fcall, replyBacklog),
		done:   make(chan struct{}),
	}
}

// String returns the remote address.
func (c *Conn) String() string { return c.remote }

// Close shuts the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.rwc.Close()
	})
	return err
}

// send queues a reply without blocking the caller.
func (c *Conn) send(f *plan9.Fcall) {
	select {
	case c.out <- f:
	case <-c.done:
	default:
		c.logger.Warn("client not reading replies, dropping connection", "remote", c.remote)
		c.Close()
	}
}

// readLoop decodes messages until the client goes away, then reports the
// hang-up.
func (c *Conn) readLoop(ctx context.Context, reqs chan<- Request) {
	defer func() {
		select {
		case reqs <- Request{Conn: c}:
		case <-ctx.Done():
		}
	}()
	for {
		f, err := plan9.ReadFcall(c.rwc)
		if err != nil {
			if err != io.EOF {
				c.logger.Debug("read message failed", "remote", c.remote, "error", err)
			}
			c.Close()
			return
		}
		select {
		case reqs <- Request{Conn: c, Fcall: f}:
		case <-c.done:
			return
		case <-ctx.Done():
			c.Close()
			return
		}
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case f := <-c.out:
			if err := plan9.WriteFcall(c.rwc, f); err != nil {
				c.logger.Debug("write message failed", "remote", c.remote, "error", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Serve runs a connection over rwc, delivering its messages to reqs. It
// returns once the reader and writer are started.
func Serve(ctx context.Context, rwc io.ReadWriteCloser, remote string, reqs chan<- Request, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	c := newConn(rwc, remote, logger)
	go c.writeLoop()
	go c.readLoop(ctx, reqs)
	return c
}
