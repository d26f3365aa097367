package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kiambuchess/kcca/internal/auth"
	"github.com/kiambuchess/kcca/internal/config"
	"github.com/kiambuchess/kcca/internal/mail"
	"github.com/kiambuchess/kcca/internal/store"
	"github.com/kiambuchess/kcca/internal/web"
)

// revocationSweep is how often logged out tokens that have expired anyway
// are forgotten.
const revocationSweep = time.Hour

func (a *app) serveCmd() *cobra.Command {
	var dev bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and background runners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if dev && cfg.Auth.JWTSecret == "" {
				a.logger.Warn("auth.jwt_secret not set, signing tokens with the development secret")
				cfg.Auth.JWTSecret = config.DevJWTSecret
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return a.serve(cmd, cfg)
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "Allow running without auth.jwt_secret")
	return cmd
}

func (a *app) serve(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Auth.PasswordHash == "" && cfg.Auth.Password == "" {
		a.logger.Warn("No admin password configured, using the default one")
	}
	creds, err := auth.NewCredentials(cfg.Auth.Username, cfg.Auth.PasswordHash, cfg.Auth.Password)
	if err != nil {
		return err
	}
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	mailer := mail.New(cfg.Mail, a.logger)
	if _, ok := mailer.(mail.Disabled); ok {
		a.logger.Warn("mail.host not set, confirmation emails are disabled")
	}

	server := web.NewServer(cfg, db, creds, tokens, mailer, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})
	g.Go(func() error {
		return db.ExpiryRunner(ctx, cfg.Payment.ExpiryInterval, cfg.Payment.PendingTTL, a.logger)
	})
	g.Go(func() error {
		return db.StatsRunner(ctx, cfg.StatsInterval, a.logger)
	})
	g.Go(func() error {
		return tokens.ExpiryRunner(ctx, revocationSweep)
	})

	a.logger.Info("KCCA server started",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("driver", db.Driver()))
	err = g.Wait()
	a.logger.Info("KCCA server stopped", zap.Error(err))
	return err
}
