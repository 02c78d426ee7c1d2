package main

import (
	"github.com/urfave/cli/v2"

	"github.com/egannguyen/go-commerce-api/internal/repository/postgres"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or revert the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					cfg, logger, err := setup(c)
					if err != nil {
						return err
					}
					db, err := postgres.Open(c.Context, cfg.DatabaseURL, cfg.DBMaxOpenConns)
					if err != nil {
						return err
					}
					defer closeQuietly(logger, "database", db)
					return postgres.MigrateUp(db)
				},
			},
			{
				Name:  "down",
				Usage: "revert every migration",
				Action: func(c *cli.Context) error {
					cfg, logger, err := setup(c)
					if err != nil {
						return err
					}
					db, err := postgres.Open(c.Context, cfg.DatabaseURL, cfg.DBMaxOpenConns)
					if err != nil {
						return err
					}
					defer closeQuietly(logger, "database", db)
					if err := postgres.MigrateDown(db); err != nil {
						return err
					}
					logger.Info("Database reverted")
					return nil
				},
			},
		},
	}
}
