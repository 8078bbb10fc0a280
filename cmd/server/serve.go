package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminrepository "catalogadmin/internal/admin/repository"
	adminservice "catalogadmin/internal/admin/service"
	adminhttp "catalogadmin/internal/admin/transport/http"
	"catalogadmin/internal/config"
	"catalogadmin/internal/metrics"
	productrepository "catalogadmin/internal/product/repository"
	productservice "catalogadmin/internal/product/service"
	producthttp "catalogadmin/internal/product/transport/http"
	"catalogadmin/internal/upload"
	"catalogadmin/internal/view"
	"catalogadmin/pkg/db"
	"catalogadmin/pkg/jwt"
	"catalogadmin/pkg/logger"

	"github.com/spf13/cobra"
)

func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))
	return cfg, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(cmd.Context(), database); err != nil {
		return err
	}
	slog.Info("schema applied")
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	slog.Info("catalogadmin starting", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer database.Close()
	slog.Info("connected to PostgreSQL")

	if migrateOnStart {
		if err := db.Migrate(ctx, database); err != nil {
			return err
		}
		slog.Info("schema applied")
	}

	metrics.InitMetrics()
	metrics.DBUp.Set(1)

	supervisor := db.NewSupervisor(database, cfg.DBPingInterval)
	supervisor.OnChange = func(up bool) {
		if up {
			metrics.DBUp.Set(1)
		} else {
			metrics.DBUp.Set(0)
		}
	}
	go supervisor.Run(ctx)

	tokens, err := jwt.NewManager(cfg.JWTSecret)
	if err != nil {
		return err
	}

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		return err
	}

	// layers
	adminRepo := adminrepository.NewPostgresAdminRepository(database)
	adminService := adminservice.NewAdminService(adminRepo)
	productRepo := productrepository.NewPostgresProductRepository(database)
	productService := productservice.NewProductService(productRepo)

	renderer := view.JSON{}
	ah := adminhttp.NewHandler(adminService, tokens, uploads, renderer, cfg.CookieSecure)
	ph := producthttp.NewHandler(productService, adminService, uploads, renderer)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, ah, ph, tokens, uploads, supervisor),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received, starting graceful shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		return err
	}

	slog.Info("server stopped")
	return nil
}
