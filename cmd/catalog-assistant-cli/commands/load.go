package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopsense-ai/catalog-assistant/cmd/catalog-assistant-cli/ui"
	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/ingest"
)

var loadCmd = &cobra.Command{
	Use:   "load <csv-file>",
	Short: "Load the product dataset CSV into the catalog store",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	csvPath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newCLILogger(cfg)

	ui.Section("Catalog Load")
	ui.KeyValue("Dataset", csvPath)
	ui.KeyValue("Database", cfg.Database.Driver)
	ui.Verbose("dsn: %s", cfg.DatabaseDSN())

	store := catalog.NewStore(logger, catalog.StoreConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.DatabaseDSN(),
	})
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("connect catalog store: %w", err)
	}
	defer store.Close()

	total, err := countDataRows(csvPath)
	if err != nil {
		return err
	}

	bar := ui.NewProgressBar(int64(total), "loading products")
	loader := ingest.NewLoader(logger, store)
	loader.OnRow = func(n int) { bar.Set(int64(n)) }

	inserted, err := loader.LoadFile(ctx, csvPath)
	bar.Finish()
	if err != nil {
		ui.Error("Load aborted after %d rows", inserted)
		return fmt.Errorf("load dataset: %w", err)
	}

	ui.Success("Loaded %d products", inserted)
	return nil
}

// countDataRows counts the data lines of the CSV so the progress bar has a
// total. Good enough for a well-formed export; quoted embedded newlines would
// only skew the bar, not the load.
func countDataRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan csv: %w", err)
	}

	if count > 0 {
		count-- // header
	}
	return count, nil
}
