package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "wm":
		os.Exit(runWM(os.Args[2:]))
	case "ls":
		os.Exit(runLs(os.Args[2:]))
	case "read":
		os.Exit(runRead(os.Args[2:]))
	case "write":
		os.Exit(runWrite(os.Args[2:]))
	case "create":
		os.Exit(runCreate(os.Args[2:]))
	case "remove", "rm":
		os.Exit(runRemove(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wmii <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  wm                  Run the window manager (foreground)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  ls <path>           List a directory of the filesystem")
	fmt.Fprintln(w, "  read <path>         Print a file; /event streams until interrupted")
	fmt.Fprintln(w, "  write <path> [data] Write data, or each line of stdin, to a file")
	fmt.Fprintln(w, "  create <path> [data]")
	fmt.Fprintln(w, "                      Create a view, key or bar label")
	fmt.Fprintln(w, "  remove <path>       Remove a view, key or bar label")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config path         Print the config file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "The filesystem commands dial --address, $WMII_ADDRESS or the default")
	fmt.Fprintln(w, "socket in the namespace directory.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'wmii <command> --help' for command-specific options.")
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name, usage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args and returns the exit code to use when parsing
// ended the command.
func parseFlags(fs *pflag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}
