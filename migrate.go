package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kiambuchess/kcca/internal/config"
	"github.com/kiambuchess/kcca/internal/store"
)

func (a *app) openStore(cmd *cobra.Command) (*config.Config, *store.DB, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			a.logger.Info("Schema up to date", zap.String("driver", db.Driver()))
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Load events, news, gallery and members from a YAML fixture",
		Long: `seed inserts the rows of a YAML fixture. Without a file the built-in
fixture with the association's sample events, news and gallery is loaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := readFixture(args)
			if err != nil {
				return err
			}

			cfg, db, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Seed(cmd.Context(), fixture, cfg.Payment.DefaultFee); err != nil {
				return err
			}
			a.logger.Info("Seeded database",
				zap.Int("events", len(fixture.Events)),
				zap.Int("news", len(fixture.News)),
				zap.Int("gallery", len(fixture.Gallery)),
				zap.Int("members", len(fixture.Members)))
			return nil
		},
	}
}

func readFixture(args []string) (store.Fixture, error) {
	if len(args) == 0 {
		return store.DefaultFixture()
	}
	f, err := os.Open(args[0])
	if err != nil {
		return store.Fixture{}, err
	}
	defer f.Close()

	fixture, err := store.ReadFixture(f)
	if err != nil {
		return store.Fixture{}, fmt.Errorf("%s: %w", args[0], err)
	}
	return fixture, nil
}
