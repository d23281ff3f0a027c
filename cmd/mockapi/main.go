// Package main starts the stub admin API: an in-memory, seeded
// implementation of every endpoint the console calls, for local
// development and demos.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/config"
	"github.com/atinyakov/MailerAdmin/internal/logger"
	"github.com/atinyakov/MailerAdmin/internal/repository"
	"github.com/atinyakov/MailerAdmin/internal/server/handler/http"
	"github.com/atinyakov/MailerAdmin/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string
	var noSeed bool

	cmd := &cobra.Command{
		Use:          "mockapi",
		Short:        "Run the in-memory admin API used by maileradmin",
		SilenceUsage: true,
		Version:      cmp.Or(version, "N/A"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, !noSeed)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file (default ./maileradmin.yaml)")
	cmd.Flags().String("addr", "", "listen address (ip:port)")
	cmd.Flags().String("log-level", "", "server log level")
	cmd.Flags().String("jwt-secret", "", "token signing secret (random when empty)")
	cmd.Flags().BoolVar(&noSeed, "empty", false, "start without demo data")
	_ = v.BindPFlag(config.KeyAddr, cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag(config.KeyServerLogLevel, cmd.Flags().Lookup("log-level"))
	_ = v.BindPFlag(config.KeyJWTSecret, cmd.Flags().Lookup("jwt-secret"))
	return cmd
}

func run(ctx context.Context, opts *config.Options, seed bool) error {
	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(opts.ServerLogLevel); err != nil {
		return err
	}
	zapLogger := log.Log

	secret := opts.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		zapLogger.Warn("no jwt_secret configured, tokens will not survive a restart")
	}
	tokens, err := service.NewTokenMaker(secret, opts.TokenTTL)
	if err != nil {
		return err
	}

	repo := repository.NewMemoryRepository()
	if seed {
		if err := repository.Seed(ctx, repo, service.HashPassword, time.Now()); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		zapLogger.Info("seeded demo data",
			zap.String("admin", repository.SeedAdminEmail),
			zap.String("password", repository.SeedAdminPassword),
		)
	}

	repository.StartExpiredRegistrationCleaner(ctx, repo,
		opts.CleanupInterval, // interval
		24*time.Hour,         // retention after expiry
		zapLogger,
	)

	// Initialize business-logic services.
	authService := service.NewAuthService(repo, tokens, zapLogger)
	adminService := service.NewAdminService(repo, zapLogger)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Auth:      &http.AuthHandler{AuthService: authService, Log: zapLogger},
		Users:     &http.UserHandler{Users: adminService, Log: zapLogger},
		Billing:   &http.BillingHandler{Billing: adminService, Log: zapLogger},
		Campaigns: &http.CampaignHandler{Campaigns: adminService, Log: zapLogger},
		Stats:     &http.StatsHandler{Stats: adminService, Log: zapLogger},
	}, authService, zapLogger, opts.AuthRateLimit)

	server := &nethttp.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		zapLogger.Info("starting HTTP server", zap.String("addr", opts.Addr))
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	zapLogger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
