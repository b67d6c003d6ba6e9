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

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/flix-offline-go/api"
	"github.com/yourusername/flix-offline-go/api/handlers"
	"github.com/yourusername/flix-offline-go/internal/app"
	"github.com/yourusername/flix-offline-go/internal/domain"
	"github.com/yourusername/flix-offline-go/internal/infrastructure"
	"github.com/yourusername/flix-offline-go/pkg/daemon"
	"github.com/yourusername/flix-offline-go/pkg/logger"
)

var (
	serverMode = flag.Bool("server-mode", false, "Internal flag: run in server mode (called by daemon)")
	foreground = flag.Bool("foreground", false, "Run in the foreground instead of detaching")
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// If not in server mode, run as daemon
	if !*serverMode && !*foreground {
		startAsDaemon()
		return
	}

	if err := runServer(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// startAsDaemon re-executes the binary in server mode detached from the terminal
func startAsDaemon() {
	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	args := []string{"-server-mode"}
	if *configPath != "" {
		args = append(args, "-config", *configPath)
	}

	pid, err := daemon.Spawn(execPath, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Server started as daemon (PID: %d)\n", pid)
}

func runServer() error {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	// Category logs: engine, error
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Logging.LogsDir,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize category logs: %w", err)
	}
	defer multiLog.Close()

	logAdapter := logger.NewLoggerAdapter(log, multiLog)

	log.Info("Starting flix-offline server",
		zap.String("version", handlers.Version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("storage_driver", config.Storage.Driver),
		zap.Duration("tick_interval", config.Simulation.TickInterval))

	slot, err := openSlot(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	store := infrastructure.NewSnapshotStore(slot)
	defer store.Close()

	notifier := infrastructure.NewNotificationService(&config.Notification, log)

	downloadMgr := app.NewDownloadManager(
		store,
		app.NewViewProjector(),
		notifier,
		&config.Simulation,
		log,
		app.WithMultiLogger(multiLog),
	)
	restored := downloadMgr.Restore()
	log.Info("Downloads restored", zap.Int("count", restored))

	cache := app.NewContentCache(config.Cache.TTL)

	router := api.SetupRouter(downloadMgr, cache, logAdapter)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		log.Error("HTTP server failed", zap.Error(err))
		downloadMgr.Close()
		return err
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop the timers first so no tick writes after the store closes
	downloadMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

// openSlot opens the durable slot selected by the storage driver
func openSlot(config *domain.StorageConfig) (infrastructure.Slot, error) {
	switch config.Driver {
	case domain.StorageDriverSQLite:
		slot, err := infrastructure.NewSQLiteSlot(config.Path, config.Slot)
		if err != nil {
			return nil, err
		}
		return slot, nil
	case domain.StorageDriverFile:
		// Path is a directory for the file driver
		slot, err := infrastructure.NewFileSlot(afero.NewOsFs(), config.Path, config.Slot)
		if err != nil {
			return nil, err
		}
		return slot, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", config.Driver)
	}
}
