package cli

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"rollbook-service/internal/app"
	"rollbook-service/internal/config"
	"rollbook-service/internal/spreadsheet"
)

// NewImportCmd bulk-imports a CSV roster export into the configured stores.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Merge a CSV roster export into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, args[0])
		},
	}
}

func runImport(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := spreadsheet.ReadRows(f)
	if err != nil {
		return err
	}

	st, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	importer := app.NewImporter(st.roster, st.attendance, st.quiz)
	result, err := importer.Run(ctx, rows, func(done, total int) {
		if done%100 == 0 || done == total {
			log.Printf("processed %d/%d rows", done, total)
		}
	})
	log.Printf("import: created=%d skipped=%d failed=%d dates=%d/%d committed",
		result.Created, result.Skipped, result.Failed, result.DatesCommitted, result.DatesTotal)
	return err
}
