package main

import (
	"fmt"
	"net/http"

	"github.com/Shrey257/CashAI/internal/infra/observability"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and seed the default categories",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	b, err := openStore(cmd.Context(), cfg, &http.Client{Timeout: cfg.Resilience.HTTPTimeout}, logger)
	if err != nil {
		return err
	}
	defer b.close()

	if err := b.migrate(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("  %s store migrated\n", cfg.Store.Driver)
	return nil
}
