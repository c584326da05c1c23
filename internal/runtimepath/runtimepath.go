//go:build unix

// Package runtimepath locates the namespace directory that holds the
// window manager's socket.
package runtimepath

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// SocketName is the file name of the default socket.
const SocketName = "wmii"

var (
	ErrNotOwner    = errors.New("is not owned by you")
	ErrPermissions = errors.New("has group or world permissions")
)

// Namespace returns the namespace directory. Priority:
// 1) NAMESPACE (if set)
// 2) /tmp/ns.<user>.<display>, with a trailing ".0" screen number removed
func Namespace() (string, error) {
	if ns := os.Getenv("NAMESPACE"); ns != "" {
		return ns, nil
	}
	display := os.Getenv("DISPLAY")
	if display == "" {
		return "", fmt.Errorf("DISPLAY is not set")
	}
	display = strings.TrimSuffix(display, ".0")

	name := os.Getenv("USER")
	if name == "" {
		u, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("failed to look up user: %w", err)
		}
		name = u.Username
	}
	return fmt.Sprintf("/tmp/ns.%s.%s", name, display), nil
}

// DefaultAddress returns unix!<namespace>/wmii.
func DefaultAddress() (string, error) {
	ns, err := Namespace()
	if err != nil {
		return "", err
	}
	return "unix!" + filepath.Join(ns, SocketName), nil
}

// Ensure creates dir with mode 0700 if it does not exist, then checks it
// with Check.
func Ensure(dir string) error {
	if err := os.Mkdir(dir, 0700); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed to create namespace directory %q: %w", dir, err)
	}
	return Check(dir)
}

// Check fails unless dir is owned by the current user and closed to group
// and others.
func Check(dir string) error {
	var st unix.Stat_t
	if err := unix.Stat(dir, &st); err != nil {
		return fmt.Errorf("can't stat namespace directory %q: %w", dir, err)
	}
	if int(st.Uid) != os.Getuid() {
		return fmt.Errorf("namespace directory %q exists, but %w", dir, ErrNotOwner)
	}
	if st.Mode&0o077 != 0 {
		return fmt.Errorf("namespace directory %q exists, but %w", dir, ErrPermissions)
	}
	return nil
}

// SocketDir returns the directory of a unix!path address and false for any
// other address.
func SocketDir(address string) (string, bool) {
	path, ok := strings.CutPrefix(address, "unix!")
	if !ok || path == "" {
		return "", false
	}
	return filepath.Dir(path), true
}
