// orchestratord drives the multi-agent collaboration protocol: it loads a
// team configuration, wires the Event Bus, Collaboration Store, Session
// Registry, Collaboration Engine, LLM Client, and Sandbox Runner together,
// and serves the Public Surface over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/orchestratord/pkg/api"
	"github.com/codeready-toolchain/orchestratord/pkg/collab"
	"github.com/codeready-toolchain/orchestratord/pkg/config"
	"github.com/codeready-toolchain/orchestratord/pkg/engine"
	"github.com/codeready-toolchain/orchestratord/pkg/llmclient"
	"github.com/codeready-toolchain/orchestratord/pkg/sandbox"
	"github.com/codeready-toolchain/orchestratord/pkg/session"
	"github.com/codeready-toolchain/orchestratord/pkg/skill"
)

// Exit codes follow the sysexits.h convention.
const (
	exitOK          = 0
	exitConfigError = 64
	exitUnavailable = 69
	exitInternal    = 70
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	os.Exit(run())
}

func run() int {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	httpAddr := flag.String("addr",
		getEnv("HTTP_ADDR", ":8080"),
		"HTTP listen address")
	persistDir := flag.String("collaboration-log-dir",
		getEnv("COLLABORATION_LOG_DIR", ""),
		"Optional directory for durable JSON-lines Collaboration Store persistence")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	slog.Info("starting orchestratord", "config_dir", *configDir, "addr", *httpAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("failed to initialize configuration", "error", err)
		return exitConfigError
	}
	cfgHolder := config.NewHolder(cfg)

	bus := collab.NewBus(cfg.Defaults.EventBusSubscriberCapacity, cfg.Defaults.MaxEventBusSubscribers)
	store := collab.NewStore(bus, cfg.Defaults.MaxEventsPerLog)
	if *persistDir != "" {
		if _, err := store.WithFileAppender(*persistDir); err != nil {
			slog.Error("failed to initialize collaboration log persistence", "error", err)
			return exitConfigError
		}
		slog.Info("collaboration log persistence enabled", "dir", *persistDir)
	}

	sessions := session.NewManager(cfg.Defaults.MaxConcurrentSessions)
	client := llmclient.NewConcurrencyLimiter(llmclient.NewDispatcher(), cfg.Defaults.MaxConcurrentCallsPerSlot)
	eng := engine.New(cfgHolder, sessions, store, client)

	skills := skill.NewLibrary()
	sb := &sandbox.ProcessSandbox{Interpreter: "python3"}

	server := api.NewServer(cfgHolder, bus, store, sessions, eng, skills, sb)

	ln, err := net.Listen("tcp", *httpAddr)
	if err != nil {
		slog.Error("failed to bind HTTP listener", "addr", *httpAddr, "error", err)
		return exitUnavailable
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", *httpAddr)
		if err := server.StartWithListener(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			slog.Error("HTTP server exited unexpectedly", "error", err)
			return exitInternal
		}
		return exitOK
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
		return exitInternal
	}

	slog.Info("orchestratord stopped cleanly")
	return exitOK
}
