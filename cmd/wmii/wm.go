package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/acmnu/wmii/internal/config"
	"github.com/acmnu/wmii/internal/daemon"
	"github.com/acmnu/wmii/internal/ipc"
	"github.com/acmnu/wmii/internal/namespace"
	"github.com/acmnu/wmii/internal/p9srv"
	"github.com/acmnu/wmii/internal/platform"
	"github.com/acmnu/wmii/internal/runtimepath"
	"github.com/acmnu/wmii/internal/wm"
)

func runWM(args []string) int {
	fs := newFlagSet("wm", "Usage: wmii wm [--config PATH] [--address ADDR] [--display DPY] [--rc SCRIPT]")
	path := fs.StringP("config", "c", "", "Config file path (default: ~/.config/wmii/config.yaml)")
	address := fs.StringP("address", "a", "", "9P listen address, unix!path or tcp!host!port")
	display := fs.StringP("display", "d", "", "X display (default: $DISPLAY)")
	rc := fs.StringP("rc", "r", "", "Startup script run once the filesystem is served")
	reconcile := fs.Duration("reconcile", daemon.DefaultReconcileInterval, "Interval for dropping clients whose windows vanished; 0 disables")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "wm takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	if *address != "" {
		cfg.Address = *address
	}
	if *display != "" {
		cfg.Display = *display
	}
	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LoggingLevel()}))
	slog.SetDefault(logger)

	if cfg.Address == "" {
		addr, err := runtimepath.DefaultAddress()
		if err != nil {
			log.Fatalf("Failed to resolve namespace: %v", err)
		}
		cfg.Address = addr
	}
	if dir, ok := runtimepath.SocketDir(cfg.Address); ok {
		if err := runtimepath.Ensure(dir); err != nil {
			log.Fatalf("Bad namespace directory: %v", err)
		}
	}

	ln, err := p9srv.Listen(cfg.Address, logger)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.Address, err)
	}
	defer ln.Close()

	surface, err := platform.NewLinuxBackend(cfg.Display, logger)
	if err != nil {
		ln.Close()
		log.Fatalf("Failed to open display: %v", err)
	}
	defer surface.Close()

	world := wm.New(surface, wm.Options{
		Defaults:   cfg.Defaults(),
		DefaultTag: cfg.DefaultTag,
		Logger:     logger,
	})
	server := p9srv.NewServer(namespace.New(world, namespace.Options{Owner: ipc.CurrentUser()}), logger)
	world.SetEventSink(server)
	if err := world.Start(); err != nil {
		surface.Close()
		ln.Close()
		log.Fatalf("Failed to start window manager: %v", err)
	}

	labels := make([]daemon.Label, 0, len(cfg.Bar))
	for _, l := range cfg.Bar {
		labels = append(labels, daemon.Label{Data: l.Data, Colors: l.Colors})
	}
	if err := daemon.Seed(world, cfg.Keys, labels, logger); err != nil {
		logger.Warn("failed to seed keys and bar", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go ln.Accept(ctx)

	if *rc != "" {
		startRC(*rc, cfg.Address, logger)
	}

	interval := *reconcile
	if interval == 0 {
		interval = -1
	}
	loop := daemon.New(daemon.Config{
		World:     world,
		Server:    server,
		Requests:  ln.Requests(),
		Events:    surface.Events(),
		Surface:   surface,
		Reconcile: interval,
		Logger:    logger,
	})
	return loopStatus(loop.Run(ctx), logger)
}

// loopStatus is the exit status once the event loop is over. A loop that
// stopped on an error still went through the normal teardown, so it exits
// 0 like quit does; the error is only logged.
func loopStatus(err error, logger *slog.Logger) int {
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("event loop stopped", "error", err)
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// startRC runs the startup script in its own session with the address
// exported, and reaps it in the background.
func startRC(script, address string, logger *slog.Logger) {
	cmd := exec.Command(script)
	cmd.Env = append(os.Environ(), ipc.AddressEnv+"="+address)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		logger.Warn("failed to start rc script", "script", script, "error", err)
		return
	}
	logger.Info("rc script started", "script", script, "pid", cmd.Process.Pid)
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Warn("rc script exited", "script", script, "error", err)
		}
	}()
}
