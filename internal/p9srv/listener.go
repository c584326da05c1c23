package p9srv

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// Listener accepts client connections and feeds their messages into one
// request channel.
type Listener struct {
	network string
	address string
	ln      net.Listener
	logger  *slog.Logger
	reqs    chan Request

	shutdownMu   sync.Mutex
	shuttingDown bool
}

// Listen binds addr, a unix!path or tcp!host!port dial string. A unix
// socket left behind by a dead server is replaced; a live one is an error.
func Listen(addr string, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	network, address, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	if network == "unix" {
		if err := clearStaleSocket(address); err != nil {
			return nil, err
		}
	}
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAddressInUse, err)
	}
	if network == "unix" {
		if err := os.Chmod(address, 0o600); err != nil {
			ln.Close()
			return nil, fmt.Errorf("failed to set socket permissions: %w", err)
		}
	}
	logger.Info("9P server listening", "address", addr)
	return &Listener{
		network: network,
		address: address,
		ln:      ln,
		logger:  logger,
		reqs:    make(chan Request),
	}, nil
}

func clearStaleSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if c, err := net.DialTimeout("unix", path, time.Second); err == nil {
		c.Close()
		return fmt.Errorf("%w: %s", ErrAddressInUse, path)
	}
	return os.Remove(path)
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Requests is the channel the event loop receives messages from.
func (l *Listener) Requests() <-chan Request { return l.reqs }

// Accept serves connections until Close is called.
func (l *Listener) Accept(ctx context.Context) {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			l.shutdownMu.Lock()
			stopping := l.shuttingDown
			l.shutdownMu.Unlock()
			if stopping || ctx.Err() != nil {
				return
			}
			l.logger.Warn("accept failed", "error", err)
			continue
		}
		remote := conn.RemoteAddr().String()
		if remote == "" || remote == "@" {
			remote = l.network
		}
		l.logger.Debug("client connected", "remote", remote)
		Serve(ctx, conn, remote, l.reqs, l.logger)
	}
}

// Close stops accepting and removes the socket file.
func (l *Listener) Close() error {
	l.shutdownMu.Lock()
	l.shuttingDown = true
	l.shutdownMu.Unlock()

	err := l.ln.Close()
	if l.network == "unix" {
		os.Remove(l.address)
	}
	return err
}
