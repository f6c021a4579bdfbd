package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/api"
	"github.com/dmorenov/cajadesk/internal/app"
	"github.com/dmorenov/cajadesk/internal/audio"
	"github.com/dmorenov/cajadesk/internal/database"
	"github.com/dmorenov/cajadesk/internal/notifications"
	"github.com/dmorenov/cajadesk/internal/realtime"
	"github.com/dmorenov/cajadesk/internal/services"
	"github.com/dmorenov/cajadesk/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cajadesk-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	cfg, err := app.LoadConfig(paths...)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithComponent("bootstrap")

	db, err := database.Open(database.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeDatabase(db, log)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	settings, err := database.NewSettings(db)
	if err != nil {
		return err
	}

	realtimeConfig, err := realtime.NewConfigService(settings)
	if err != nil {
		return err
	}
	if err := realtimeConfig.Load(ctx); err != nil {
		return err
	}

	notificationConfig, err := notifications.NewConfigService(settings)
	if err != nil {
		return err
	}
	if err := notificationConfig.Load(ctx); err != nil {
		return err
	}

	var ledgerOpts []notifications.LedgerOption
	var busOpts []realtime.BusOption
	if cfg.Audio.Enabled {
		cues := audio.NewCueGenerator(nil)
		ledgerOpts = append(ledgerOpts, notifications.WithCuePlayer(cues))
		busOpts = append(busOpts, realtime.WithCuePlayer(cues))
	}

	toasts := notifications.NewToastChannel()
	ledger, err := notifications.NewLedger(db, notificationConfig, toasts, ledgerOpts...)
	if err != nil {
		return err
	}
	if err := ledger.StartSweeper(); err != nil {
		return fmt.Errorf("start expiry sweeper: %w", err)
	}
	defer ledger.StopSweeper()

	visibility := realtime.NewVisibility()
	bus := realtime.NewBus(realtimeConfig, busOpts...)
	bus.SubscribeAll(func(ev realtime.Event) {
		log.Debug("realtime event",
			zap.String("domain", string(ev.Domain)),
			zap.String("action", string(ev.Action)))
	})
	scheduler := realtime.NewScheduler(bus, realtimeConfig, visibility,
		realtime.DefaultDiffers(db, settings, time.Now))
	scheduler.Start()
	defer scheduler.Stop()

	requests, err := services.NewRequestService(db, ledger)
	if err != nil {
		return err
	}
	users, err := services.NewUserService(db)
	if err != nil {
		return err
	}
	printers, err := services.NewPrinterService(db, ledger)
	if err != nil {
		return err
	}

	router, err := api.NewRouter(api.Dependencies{
		DB:                 db,
		Ledger:             ledger,
		NotificationConfig: notificationConfig,
		RealtimeConfig:     realtimeConfig,
		Visibility:         visibility,
		Requests:           requests,
		Users:              users,
		Printers:           printers,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("retrieve sql handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close database", zap.Error(err))
	}
}
