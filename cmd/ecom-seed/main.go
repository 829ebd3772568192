package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ecom/internal/backend"
	"ecom/internal/cli"
	applog "ecom/internal/log"
	"ecom/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentBackend)

	var file string
	cmd := &cobra.Command{
		Use:   "ecom-seed",
		Short: "Load a YAML fixture of products, users, orders and coupons into the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cli.LoadAndValidateConfig(logger)
			if file == "" {
				file = cfg.SeedFile
			}
			if file == "" {
				return fmt.Errorf("no fixture given: pass --file or set SEED_FILE")
			}
			if cfg.DataBackend == string(backend.MemoryBackend) {
				return fmt.Errorf("seeding the memory backend has no effect; set SEED_FILE for the server instead")
			}

			fixture, err := store.LoadFixture(file)
			if err != nil {
				return err
			}

			backendCfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}
			backendCfg.AMQPURL = ""
			result, err := backend.NewFactory(logger.Logger).CreateBackend(cmd.Context(), backendCfg)
			if err != nil {
				return err
			}
			defer result.Cleanup()

			n, err := fixture.Apply(cmd.Context(), result.Store)
			if err != nil {
				return fmt.Errorf("apply fixture after %d records: %w", n, err)
			}
			logger.Info("Fixture loaded", "file", file, "records", n, "backend", cfg.DataBackend)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (defaults to SEED_FILE)")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("Seeding failed", applog.FieldError, err)
		os.Exit(1)
	}
}
