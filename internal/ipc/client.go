// Package ipc is the client side of the window manager's 9P filesystem.
// The wmii command line and the MCP server both go through it.
package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/user"
	"strings"
	"sync"
	"time"

	"9fans.net/go/plan9"
	"9fans.net/go/plan9/client"

	"github.com/acmnu/wmii/internal/p9srv"
	"github.com/acmnu/wmii/internal/runtimepath"
)

// DefaultTimeout bounds how long Dial waits for the socket.
const DefaultTimeout = 5 * time.Second

// Client is an attached 9P session.
type Client struct {
	address string
	conn    *client.Conn
	fs      *client.Fsys

	closeOnce sync.Once
	closeErr  error
}

// AddressEnv overrides the default address for clients.
const AddressEnv = "WMII_ADDRESS"

// Dial connects to address and attaches as the current user. An empty
// address means $WMII_ADDRESS, then the default socket in the namespace
// directory.
func Dial(address string) (*Client, error) {
	if address == "" {
		address = os.Getenv(AddressEnv)
	}
	if address == "" {
		addr, err := runtimepath.DefaultAddress()
		if err != nil {
			return nil, err
		}
		address = addr
	}
	network, addr, err := p9srv.ParseAddress(address)
	if err != nil {
		return nil, err
	}
	nc, err := net.DialTimeout(network, addr, DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to window manager: %w (is wmii running?)", err)
	}
	c, err := NewClient(nc, CurrentUser())
	if err != nil {
		nc.Close()
		return nil, err
	}
	c.address = address
	return c, nil
}

// NewClient negotiates a session over an established connection.
func NewClient(nc net.Conn, uname string) (*Client, error) {
	conn, err := client.NewConn(nc)
	if err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	fs, err := conn.Attach(nil, uname, "")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("attach: %w", err)
	}
	return &Client{address: nc.RemoteAddr().String(), conn: conn, fs: fs}, nil
}

// CurrentUser names the user to attach as.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "none"
}

// Address is the dial string of the session.
func (c *Client) Address() string { return c.address }

// Close ends the session.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { c.closeErr = c.conn.Close() })
	return c.closeErr
}

func clean(path string) string {
	return strings.TrimPrefix(path, "/")
}

// Read returns the whole content of a file.
func (c *Client) Read(path string) ([]byte, error) {
	fid, err := c.fs.Open(clean(path), plan9.OREAD)
	if err != nil {
		return nil, err
	}
	defer fid.Close()
	return io.ReadAll(fid)
}

// Write replaces the content of a file with data in a single write.
func (c *Client) Write(path string, data []byte) error {
	fid, err := c.fs.Open(clean(path), plan9.OWRITE|plan9.OTRUNC)
	if err != nil {
		return err
	}
	defer fid.Close()
	return writeAll(fid, data)
}

func writeAll(fid *client.Fid, data []byte) error {
	if len(data) == 0 {
		_, err := fid.Write(nil)
		return err
	}
	for len(data) > 0 {
		n, err := fid.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// Create makes a file, or a directory when perm has plan9.DMDIR, and
// writes data to it when given.
func (c *Client) Create(path string, perm plan9.Perm, data []byte) error {
	mode := uint8(plan9.OWRITE)
	if perm&plan9.DMDIR != 0 {
		mode = plan9.OREAD
	}
	fid, err := c.fs.Create(clean(path), mode, perm)
	if err != nil {
		return err
	}
	defer fid.Close()
	if len(data) == 0 || perm&plan9.DMDIR != 0 {
		return nil
	}
	return writeAll(fid, data)
}

// Remove deletes a file.
func (c *Client) Remove(path string) error {
	return c.fs.Remove(clean(path))
}

// Stat describes a file.
func (c *Client) Stat(path string) (*plan9.Dir, error) {
	return c.fs.Stat(clean(path))
}

// List returns the entries of a directory, or the file itself when path
// is not one.
func (c *Client) List(path string) ([]*plan9.Dir, error) {
	d, err := c.Stat(path)
	if err != nil {
		return nil, err
	}
	if d.Mode&plan9.DMDIR == 0 {
		return []*plan9.Dir{d}, nil
	}
	fid, err := c.fs.Open(clean(path), plan9.OREAD)
	if err != nil {
		return nil, err
	}
	defer fid.Close()
	return fid.Dirreadall()
}

// Events calls fn with each line read from /event until ctx is done, fn
// returns an error or the session ends. Cancelling ctx closes the
// session.
func (c *Client) Events(ctx context.Context, fn func(line string) error) error {
	fid, err := c.fs.Open("event", plan9.OREAD)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	sc := bufio.NewScanner(fid)
	for sc.Scan() {
		if err := fn(sc.Text()); err != nil {
			fid.Close()
			return err
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
