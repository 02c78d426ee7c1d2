package main

import (
	"github.com/urfave/cli/v2"

	"github.com/egannguyen/go-commerce-api/internal/service"
	"github.com/egannguyen/go-commerce-api/internal/validation"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert sample products into an empty catalog",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			db, err := openDatabase(c.Context, cfg)
			if err != nil {
				return err
			}
			defer closeQuietly(logger, "database", db)

			products := service.NewProductService(postgresRepositories(db).products, validation.New(), logger, cfg.DefaultPageSize)
			n, err := products.Seed(c.Context, service.SampleProducts())
			if err != nil {
				return err
			}
			if n == 0 {
				logger.Info("Products already exist, skipping seed")
				return nil
			}
			logger.WithField("count", n).Info("Seeded products")
			return nil
		},
	}
}
