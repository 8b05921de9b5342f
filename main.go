package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angas/electrack-go/config"
	"github.com/angas/electrack-go/database"
	"github.com/angas/electrack-go/logging"
	"github.com/angas/electrack-go/nordpool"
	"github.com/angas/electrack-go/prices"
	"github.com/angas/electrack-go/task"
	"github.com/angas/electrack-go/tibber"
	"github.com/angas/electrack-go/www"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	godotenv.Load()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("electrack is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	config.Watch(logger.With("module", "config"), func(c *config.AppConfig) {
		logger.Warn("config change detected, restart to apply")
	})

	primary, err := resolveProvider(cnfg.EnergyPrice)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve energy price provider: %v", err))
	}

	providers := []prices.Provider{primary}
	if primary.Name() != "nordpool" {
		providers = append(providers, nordpool.New(cnfg.EnergyPrice.Area)) // Secondary provider
	}

	gate := prices.NewGate(
		logger.With("module", "gate"),
		db,
		primary,
		cnfg.EnergyPrice.GetFetchTimeout())

	tasks := task.NewTasks(db, providers, cnfg)
	tasks.Run()
	defer tasks.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server := www.NewServer(db, gate, cnfg.Api)
	server.Run(ctx)
}

// resolveProvider builds the primary price provider from the configured
// DSN, e.g. "tibber://<api-token>@api.tibber.com" or "nordpool://SE3".
func resolveProvider(cnfg config.AppConfigEnergyPrice) (prices.Provider, error) {
	dsn, err := url.Parse(cnfg.ProviderDsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse provider dsn: %w", err)
	}

	switch dsn.Scheme {
	case "tibber":
		token := dsn.User.Username()
		if token == "" {
			return nil, fmt.Errorf("tibber dsn is missing the api token")
		}
		return tibber.New(token), nil
	case "nordpool":
		area := dsn.Host
		if area == "" {
			area = cnfg.Area
		}
		return nordpool.New(area), nil
	default:
		return nil, fmt.Errorf("provider dsn does not match any supported provider: %q", dsn.Scheme)
	}
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	time.Sleep(2 * time.Second)
	os.Exit(1)
}
