package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"9fans.net/go/plan9"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/acmnu/wmii/internal/ipc"
)

func addressFlag(fs *pflag.FlagSet) *string {
	return fs.StringP("address", "a", "", "9P address (default: $WMII_ADDRESS or the namespace socket)")
}

func dial(address string) (*ipc.Client, int) {
	c, err := ipc.Dial(address)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, 1
	}
	return c, 0
}

func runLs(args []string) int {
	fs := newFlagSet("ls", "Usage: wmii ls [-l] [-p] <path>")
	address := addressFlag(fs)
	long := fs.BoolP("long", "l", false, "Long listing with mode, owner, size and time")
	full := fs.BoolP("path", "p", false, "Print full paths")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	target := fs.Arg(0)

	c, code := dial(*address)
	if c == nil {
		return code
	}
	defer c.Close()

	dirs, err := c.List(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ls %s: %v\n", target, err)
		return 1
	}
	prefix := ""
	if *full {
		prefix = strings.TrimSuffix(target, "/") + "/"
		if len(dirs) == 1 && dirs[0].Mode&plan9.DMDIR == 0 && path.Base(target) == dirs[0].Name {
			prefix = strings.TrimSuffix(target, dirs[0].Name)
		}
	}

	switch {
	case *long:
		for _, d := range dirs {
			fmt.Println(formatLong(d, prefix))
		}
	default:
		names := make([]string, 0, len(dirs))
		for _, d := range dirs {
			names = append(names, displayName(d, prefix))
		}
		width := 0
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				width = w
			}
		}
		fmt.Print(formatColumns(names, width))
	}
	return 0
}

func displayName(d *plan9.Dir, prefix string) string {
	name := prefix + d.Name
	if d.Mode&plan9.DMDIR != 0 {
		name += "/"
	}
	return name
}

func formatLong(d *plan9.Dir, prefix string) string {
	mtime := time.Unix(int64(d.Mtime), 0).Format("Jan _2 15:04")
	return fmt.Sprintf("%s %s %s %8d %s %s", d.Mode, d.Uid, d.Gid, d.Length, mtime, displayName(d, prefix))
}

// formatColumns lays names out in columns that fit width, filling down
// first. A width of zero prints one name per line.
func formatColumns(names []string, width int) string {
	if len(names) == 0 {
		return ""
	}
	widest := 0
	for _, n := range names {
		widest = max(widest, len(n))
	}
	colWidth := widest + 2
	cols := 1
	if width > 0 {
		cols = max(width/colWidth, 1)
	}
	rows := (len(names) + cols - 1) / cols

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := c*rows + r
			if i >= len(names) {
				break
			}
			last := c == cols-1 || i+rows >= len(names)
			if last {
				b.WriteString(names[i])
			} else {
				fmt.Fprintf(&b, "%-*s", colWidth, names[i])
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func runRead(args []string) int {
	fs := newFlagSet("read", "Usage: wmii read <path>")
	address := addressFlag(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	target := path.Clean("/" + fs.Arg(0))

	c, code := dial(*address)
	if c == nil {
		return code
	}
	defer c.Close()

	if target == "/event" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err := c.Events(ctx, func(line string) error {
			_, err := fmt.Println(line)
			return err
		})
		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", target, err)
			return 1
		}
		return 0
	}

	data, err := c.Read(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", target, err)
		return 1
	}
	os.Stdout.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' && term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println()
	}
	return 0
}

// inputLines returns the data to write: the arguments joined by spaces, or
// each line of r when there are none.
func inputLines(args []string, r io.Reader) ([]string, error) {
	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func runWrite(args []string) int {
	fs := newFlagSet("write", "Usage: wmii write <path> [data...]\n\nWithout data, each line of stdin is written separately.")
	address := addressFlag(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}
	target := fs.Arg(0)
	lines, err := inputLines(fs.Args()[1:], os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	c, code := dial(*address)
	if c == nil {
		return code
	}
	defer c.Close()

	for _, line := range lines {
		if err := c.Write(target, []byte(line)); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", target, err)
			return 1
		}
	}
	return 0
}

func runCreate(args []string) int {
	fs := newFlagSet("create", "Usage: wmii create [-d] <path> [data...]")
	address := addressFlag(fs)
	dir := fs.BoolP("dir", "d", false, "Create a directory (implied under /tag)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}
	target := path.Clean("/" + fs.Arg(0))
	perm := plan9.Perm(0o600)
	if *dir || path.Dir(target) == "/tag" {
		perm = plan9.DMDIR | 0o700
	}
	var data []byte
	if fs.NArg() > 1 {
		data = []byte(strings.Join(fs.Args()[1:], " "))
	}

	c, code := dial(*address)
	if c == nil {
		return code
	}
	defer c.Close()

	if err := c.Create(target, perm, data); err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", target, err)
		return 1
	}
	return 0
}

func runRemove(args []string) int {
	fs := newFlagSet("remove", "Usage: wmii remove <path>...")
	address := addressFlag(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	c, code := dial(*address)
	if c == nil {
		return code
	}
	defer c.Close()

	status := 0
	for _, target := range fs.Args() {
		if err := c.Remove(target); err != nil {
			fmt.Fprintf(os.Stderr, "remove %s: %v\n", target, err)
			status = 1
		}
	}
	return status
}
