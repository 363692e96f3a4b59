package main

import (
	"fmt"

	"github.com/Alias1177/HeartGuard/internal/config"
	"github.com/Alias1177/HeartGuard/internal/database"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "heartctl",
		Short:        "HeartGuard admin tool",
		Long:         "heartctl inspects the classifier ensemble and manages the stored assessment history.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DB_DRIVER/DATABASE_PATH)")
	root.PersistentFlags().String("models", "", "Models directory (overrides MODELS_DIR)")

	root.AddCommand(newModelsCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newClearCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newContentCmd())
	return root
}

// openStore uses --db when given, otherwise the server's database settings
func openStore(cmd *cobra.Command) (*database.DB, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return database.OpenSQLite(p)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(database.Options{
		Driver:     database.Dialect(cfg.DBDriver),
		SQLitePath: cfg.DatabasePath,
		Postgres: database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func modelsDir(cmd *cobra.Command) (string, error) {
	if d, _ := cmd.Flags().GetString("models"); d != "" {
		return d, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.ModelsDir, nil
}
