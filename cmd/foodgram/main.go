package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram/cmd/config"
	migration "foodgram/cmd/database/migrate"
	"foodgram/internal/logging"
	"foodgram/internal/utils"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configFile string
		envFile    string
	)

	root := &cobra.Command{
		Use:           "foodgram",
		Short:         "Recipe sharing API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.LoadConfigFrom(configFile, envFile); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Init(logging.Config{
				Level:  utils.GetConfig("LOG_LEVEL"),
				Format: utils.GetConfig("LOG_FORMAT"),
			})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to the dotenv file")

	root.AddCommand(serveCmd(), migrateCmd())
	return root
}

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := config.ConnectDB()
			if err != nil {
				logging.Error().Err(err).Msg("failed to connect database")
				return err
			}

			if !skipMigrate {
				if err := migration.Migrate(db); err != nil {
					logging.Error().Err(err).Msg("failed to migrate database")
					return err
				}
			}

			deps, err := config.LoadDependencies(ctx)
			if err != nil {
				logging.Error().Err(err).Msg("failed to load dependencies")
				return err
			}

			app, err := config.NewApp(db, deps)
			if err != nil {
				logging.Error().Err(err).Msg("failed to build app")
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				addr := ":" + utils.GetConfig("APP_PORT")
				logging.Info().Str("addr", addr).Msg("server starting")
				errCh <- app.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logging.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the schema on startup")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectDB()
			if err != nil {
				return err
			}
			return migration.Migrate(db)
		},
	}
}
