package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/acmnu/wmii/internal/config"
)

const configUsage = `Usage:
  wmii config path
  wmii config init     [--path PATH] [--force]
  wmii config validate [--path PATH]
  wmii config print    [--path PATH] [--defaults]
  wmii config explain  [--path PATH] <yaml.path>
`

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, configUsage)
		return 2
	}
	cmd, rest := args[0], args[1:]
	fs := newFlagSet(cmd, "Usage: wmii config "+cmd+" [--path PATH]")
	path := fs.String("path", "", "config file (default $WMII_CONFIG or ~/.config/wmii/config.yaml)")

	switch cmd {
	case "help", "-h", "--help":
		fmt.Print(configUsage)
		return 0
	case "path":
		p, err := config.DefaultConfigPath()
		if err != nil {
			return fail(err)
		}
		fmt.Println(p)
		return 0
	case "init":
		return configInit(fs, path, rest)
	case "validate":
		if code, ok := parseFlags(fs, rest); !ok {
			return code
		}
		if _, err := loadConfig(*path); err != nil {
			return fail(err)
		}
		fmt.Println("config: ok")
		return 0
	case "print":
		return configPrint(fs, path, rest)
	case "explain":
		return configExplain(fs, path, rest)
	}
	fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", cmd)
	fmt.Fprint(os.Stderr, configUsage)
	return 2
}

// configInit writes the built-in defaults so they can be edited.
func configInit(fs *pflag.FlagSet, path *string, args []string) int {
	force := fs.Bool("force", false, "overwrite an existing file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	target := *path
	if target == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return fail(err)
		}
		target = p
	}
	if _, err := os.Stat(target); err == nil && !*force {
		return fail(fmt.Errorf("%s already exists (use --force to overwrite)", target))
	}
	if err := config.DefaultConfig().SaveTo(target); err != nil {
		return fail(err)
	}
	fmt.Println(target)
	return 0
}

func configPrint(fs *pflag.FlagSet, path *string, args []string) int {
	defaults := fs.Bool("defaults", false, "print the built-in defaults, ignoring files")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	cfg := config.DefaultConfig()
	if !*defaults {
		res, err := loadConfig(*path)
		if err != nil {
			return fail(err)
		}
		cfg = res.Config
	}
	if err := writeYAML(os.Stdout, cfg); err != nil {
		return fail(err)
	}
	return 0
}

func configExplain(fs *pflag.FlagSet, path *string, args []string) int {
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "explain takes exactly one <yaml.path>")
		return 2
	}
	key := fs.Arg(0)
	res, err := loadConfig(*path)
	if err != nil {
		return fail(err)
	}
	value, src, err := config.Explain(res, key)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("path: %s\nsource: %s\nvalue:\n", key, formatSource(src))
	if err := writeYAML(os.Stdout, value); err != nil {
		return fail(err)
	}
	return 0
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}

func formatSource(src config.Source) string {
	switch {
	case src.Kind == config.SourceDefault && src.Name != "":
		return "default:" + src.Name
	case src.Kind == config.SourceFile && src.Line > 0:
		return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
	case src.Kind == config.SourceFile && src.File != "":
		return "file:" + src.File
	}
	return string(src.Kind)
}
