package main

import (
	"context"
	"fmt"
	"line-chat/contract"
	"line-chat/domain"
	"line-chat/internal"
	"line-chat/moderation"
	"line-chat/observability"
	"line-chat/runtime"
	"line-chat/runtime/workers"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle and centralizes error reporting,
// so that every deferred cleanup runs before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(strings.ToUpper(config.LogLevel))

	censor, err := buildCensor(config, log)
	if err != nil {
		return exitConfig, err
	}

	// 2. Setup Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	scheduler := runtime.NewScheduler(log)
	monitoring := observability.NewMonitoring()

	orchestrator := runtime.NewOrchestrator(log, sup, registry, scheduler, monitoring, runtime.Settings{
		Policy: domain.NewPolicy(config.LimitComplaint, config.LimitMessage).
			WithWindows(config.BanWindow, config.RateWindow),
		DelayUnit:       config.DelayUnit,
		MaxLineLength:   config.MaxLineLength,
		OutboxSize:      config.OutboxSize,
		WriteTimeout:    config.WriteTimeout,
		DeliveryTimeout: config.DeliveryTimeout,
		MetricInterval:  config.MetricInterval,
		MetricsAddr:     config.MetricsAddr,
		Censor:          censor,
	})

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Bind, a failure here is fatal
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}
	log.Info("Server initialized", "address", listener.Addr().String())

	errChan := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := orchestrator.Start(ctx, listener); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 5. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Warn("Interrupt detected, shutting down")
	case err := <-errChan:
		return exitRuntime, err
	}

	orchestrator.Stop()
	<-done
	log.Info("Program stopped cleanly")
	return exitOK, nil
}

// buildCensor returns nil when no dictionary directory is configured.
func buildCensor(config internal.Config, log *slog.Logger) (contract.ICensor, error) {
	if config.CensoredDir == "" {
		return nil, nil
	}
	data, err := runtime.NewCensoredLoader(os.DirFS(config.CensoredDir)).LoadAll(".")
	if err != nil {
		return nil, fmt.Errorf("loading censored words from %s: %w", config.CensoredDir, err)
	}
	log.Info("Censored dictionaries loaded",
		"languages", strings.Join(data.Languages, ","), "words", len(data.Words))

	replacement, err := internal.CharacterRune(config.CharacterReplacement)
	if err != nil {
		return nil, err
	}
	moderator, err := moderation.NewModerator(data.Words, replacement, log)
	if err != nil {
		return nil, err
	}
	return moderator, nil
}
