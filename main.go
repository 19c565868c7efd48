package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/api"
	"pharmadesk/m/internal/auth"
	"pharmadesk/m/internal/config"
	"pharmadesk/m/internal/database"
	"pharmadesk/m/internal/logger"
	"pharmadesk/m/internal/metrics"
	"pharmadesk/m/internal/migrations"
	"pharmadesk/m/internal/seed"
	"pharmadesk/m/internal/store"
)

var (
	seedFile      string
	adminUsername string
	adminPassword string
	adminFullName string

	rootCmd = &cobra.Command{
		Use:   "pharmadesk",
		Short: "Pharmacy inventory and sales API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()
			app.log.Info("migrations applied", zap.String("driver", app.cfg.DatabaseDriver))
			return nil
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Import a medicine catalog CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()
			path := seedFile
			if path == "" {
				path = app.cfg.SeedMedicinesCSV
			}
			if path == "" {
				return errors.New("no catalog given: pass --file or set SEED_MEDICINES_CSV")
			}
			n, err := seed.LoadMedicinesFile(cmd.Context(), app.store, path, app.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d medicines\n", n)
			return nil
		},
	}

	createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(adminUsername) == "" || adminPassword == "" {
				return errors.New("--username and --password are required")
			}
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			hash, err := auth.HashPassword(adminPassword)
			if err != nil {
				return err
			}
			admin := domain.User{
				FullName:     adminFullName,
				Username:     strings.TrimSpace(adminUsername),
				PasswordHash: hash,
				Role:         domain.RoleAdmin,
				IsActive:     true,
			}
			if err := app.store.CreateUser(cmd.Context(), &admin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %q (id %d)\n", admin.Username, admin.ID)
			return nil
		},
	}
)

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "path to the medicine catalog CSV")
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	createAdminCmd.Flags().StringVar(&adminFullName, "full-name", "", "admin display name")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, createAdminCmd)
}

type app struct {
	cfg   config.Config
	log   *zap.Logger
	db    *sqlx.DB
	store *store.Store
}

// bootstrap loads configuration, opens the database and applies migrations.
func bootstrap() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	zl, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		_ = zl.Sync()
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		_ = zl.Sync()
		return nil, err
	}
	return &app{cfg: cfg, log: zl, db: db, store: store.New(db, zl)}, nil
}

func (a *app) close() {
	_ = a.db.Close()
	_ = a.log.Sync()
}

func serve() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.SeedMedicinesCSV != "" {
		if _, err := seed.LoadMedicinesFile(ctx, a.store, a.cfg.SeedMedicinesCSV, a.log); err != nil {
			a.log.Warn("unable to seed medicine catalog", zap.String("path", a.cfg.SeedMedicinesCSV), zap.Error(err))
		}
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:   a.cfg.Secret,
		TTL:      a.cfg.TokenTTL,
		Issuer:   a.cfg.TokenIssuer,
		Audience: a.cfg.TokenAudience,
	})
	if err != nil {
		return err
	}
	if a.cfg.Secret == "dev_secret" {
		a.log.Warn("SECRET is not set; using the development signing key")
	}

	handler := api.New(a.store, tokens, a.log, metrics.New(a.cfg.MetricsNamespace))
	srv := &http.Server{
		Addr:              ":" + a.cfg.HTTPPort,
		Handler:           handler.Router(a.cfg.APIPrefix, a.cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("PharmaDesk server starting", zap.String("addr", srv.Addr), zap.String("prefix", a.cfg.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
