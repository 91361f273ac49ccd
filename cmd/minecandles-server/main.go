// Command minecandles-server runs the HTTP mining service: submit a run
// over REST, watch its progress over a WebSocket, and fetch the finished
// report, all backed by a Postgres audit log and an optional Redis result
// cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"candleminer/config"
	"candleminer/internal/api"
	"candleminer/internal/auth"
	"candleminer/internal/cache"
	"candleminer/internal/database"
	"candleminer/internal/logging"
	"candleminer/internal/vault"
)

func main() {
	loadDotEnv()

	var configPath string
	var reportRoot string
	flag.StringVar(&configPath, "config", "config.json", "JSON configuration file")
	flag.StringVar(&reportRoot, "report-dir", "./reports", "directory to write mining reports under")
	flag.Parse()

	if err := run(configPath, reportRoot); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadDotEnv() {
	candidates := []string{".env", "../.env", "../../.env"}
	for _, c := range candidates {
		if err := godotenv.Load(c); err == nil {
			return
		}
	}
}

func run(configPath, reportRoot string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logging.SetDefault(logging.New(&logging.Config{
		Level:      cfg.Logging.Level,
		Output:     cfg.Logging.Output,
		JSONFormat: cfg.Logging.JSONFormat,
		Component:  "minecandles-server",
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	vaultClient, err := vault.NewClient(cfg.Vault)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}

	dsn, err := vaultClient.ResolveDatabaseDSN(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to resolve database DSN: %w", err)
	}

	db, err := database.NewDB(database.Config{DSN: dsn})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	repo := database.NewRepository(db)

	var cacheSvc *cache.CacheService
	if cfg.Redis.Enabled {
		redisPassword, err := vaultClient.ResolveRedisPassword(ctx, cfg.Redis.Password)
		if err != nil {
			return fmt.Errorf("failed to resolve redis password: %w", err)
		}
		redisCfg := cfg.Redis
		redisCfg.Password = redisPassword

		cacheSvc, err = cache.NewCacheService(redisCfg)
		if err != nil {
			logging.WithError(err).Warn("cache disabled: failed to initialize redis")
			cacheSvc = nil
		}
	}

	var authService *auth.Service
	if cfg.Auth.Enabled {
		jwtSecret, err := vaultClient.ResolveJWTSecret(ctx, cfg.Auth.JWTSecret)
		if err != nil {
			return fmt.Errorf("failed to resolve JWT secret: %w", err)
		}
		authService = auth.NewService(auth.Config{
			JWTSecret:            jwtSecret,
			AccessTokenDuration:  cfg.Auth.AccessTokenDuration,
			RefreshTokenDuration: cfg.Auth.RefreshTokenDuration,
			MinPasswordLength:    cfg.Auth.MinPasswordLength,
			OperatorEmail:        cfg.Auth.OperatorEmail,
			OperatorPasswordHash: cfg.Auth.OperatorPasswordHash,
		})
	}

	server := api.NewServer(cfg.Server, repo, cacheSvc, authService, reportRoot)

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting mining service", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logging.Info("shutting down mining service")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if cacheSvc != nil {
		cacheSvc.Close()
	}

	return server.Shutdown(shutdownCtx)
}
