// Package server boots the ventas process: config, logging, database,
// cache, storage and the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/config"
	_ "github.com/shashiranjanraj/ventas/database/migrations"
	"github.com/shashiranjanraj/ventas/internal/kernel"
	"github.com/shashiranjanraj/ventas/pkg/cache"
	"github.com/shashiranjanraj/ventas/pkg/database"
	"github.com/shashiranjanraj/ventas/pkg/logger"
	"github.com/shashiranjanraj/ventas/pkg/middleware"
	"github.com/shashiranjanraj/ventas/pkg/migration"
	"github.com/shashiranjanraj/ventas/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// App holds the process-wide resources. Close releases them in reverse
// order of acquisition.
type App struct {
	DB *gorm.DB

	closers []func()
}

// Boot loads config, installs the logger and opens the database. It is the
// common prefix of every CLI command.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	app := &App{}
	opts := logger.Options{Env: config.AppEnv()}
	if uri := config.LogMongoURI(); uri != "" {
		h, err := logger.NewMongoHandler(ctx, uri, config.LogMongoDB(), config.LogMongoCollection())
		if err != nil {
			// Stdout logging still works; report and carry on.
			fmt.Fprintf(os.Stderr, "mongo log sink disabled: %v\n", err)
		} else {
			opts.Mongo = h
			app.closers = append(app.closers, h.Close)
		}
	}
	logger.Setup(opts)

	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN(), config.DBDebug())
	if err != nil {
		app.Close()
		return nil, err
	}
	app.DB = db
	app.closers = append(app.closers, func() { _ = database.Close(db) })

	logger.Info("database connected", "driver", config.DatabaseDriver())
	return app, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Kernel connects the cache and storage disk and builds the HTTP kernel.
// Both degrade gracefully: no Redis means an in-memory cache, no disk means
// report exports fail while everything else keeps working.
func (a *App) Kernel(ctx context.Context) (*kernel.HTTPKernel, error) {
	store, err := cache.Connect(ctx, cache.Options{
		RedisAddr:     config.RedisAddr(),
		RedisPassword: config.RedisPassword(),
	})
	if err == nil {
		logger.Info("cache connected", "driver", store.Driver())
	}
	a.closers = append(a.closers, func() { _ = store.Close() })

	diskCfg := storage.Config{
		Driver:     config.StorageDisk(),
		LocalRoot:  config.StorageLocalRoot(),
		LocalURL:   config.StorageURL(),
		S3Bucket:   config.StorageS3Bucket(),
		S3Region:   config.StorageS3Region(),
		S3Key:      config.StorageS3Key(),
		S3Secret:   config.StorageS3Secret(),
		S3Endpoint: config.StorageS3Endpoint(),
		S3URL:      config.StorageS3URL(),
	}
	disk, err := storage.New(ctx, diskCfg)
	if err != nil {
		logger.Warn("storage disabled", "driver", diskCfg.Driver, "error", err)
		disk = nil
	}
	staticDir := ""
	if disk != nil && (diskCfg.Driver == "" || diskCfg.Driver == "local") {
		staticDir = diskCfg.LocalRoot
	}

	limiter := middleware.NewRateLimiter(config.RateLimitPerMinute(), time.Minute)
	a.closers = append(a.closers, limiter.Stop)

	return kernel.NewHTTPKernel(kernel.Deps{
		DB:          a.DB,
		Cache:       store,
		Disk:        disk,
		RateLimit:   limiter,
		ReportLimit: config.ReportDefaultLimit(),
		StorageDir:  staticDir,
	})
}

// Migrate runs pending migrations, printing progress to out.
func (a *App) Migrate(out io.Writer) error {
	return migration.New(a.DB, out).Run()
}

// Start serves HTTP until SIGINT/SIGTERM, then drains in-flight requests.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if config.AutoMigrate() {
		if err := app.Migrate(io.Discard); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	k, err := app.Kernel(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ventas listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
