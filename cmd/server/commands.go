package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"booking-system/internal/api"
	"booking-system/internal/api/middlewares"
	"booking-system/internal/database"
	"booking-system/internal/tokenstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete finished appointments once and exit",
	RunE:  runComplete,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer log.Close()

	log.WithFields(map[string]interface{}{
		"database": cfg.Database.Type,
		"redis":    cfg.Redis.Enabled,
		"mode":     cfg.Server.Mode,
	}).Info("Starting booking server")

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blacklist, err := tokenstore.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	services := api.NewServices(db, blacklist, log, cfg)
	if err := services.Start(); err != nil {
		services.Stop()
		return err
	}
	defer services.Stop()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	limiter := middlewares.NewRateLimiter(cfg.API.RateLimit, cfg.API.BurstLimit, log)
	limiter.StartCleanup(time.Minute, ctx.Done())
	api.SetupRoutes(router, services, limiter)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", server.Addr, "tls", cfg.Server.TLS.Enabled)
		var err error
		if cfg.Server.TLS.Enabled {
			err = server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed: %v", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer log.Close()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		return err
	}

	log.Info("Migrations applied", "database", cfg.Database.Type)
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer log.Close()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	services := api.NewServices(db, tokenstore.NewMemory(), log, cfg)
	defer services.Stop()

	completed, pruned, err := services.Completer().RunNow(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "completed %d appointments, pruned %d availability windows\n", completed, pruned)
	return nil
}
