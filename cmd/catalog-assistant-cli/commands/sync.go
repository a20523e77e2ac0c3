package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopsense-ai/catalog-assistant/cmd/catalog-assistant-cli/ui"
	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/embedding"
	"github.com/shopsense-ai/catalog-assistant/internal/ingest"
	"github.com/shopsense-ai/catalog-assistant/internal/vector"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Embed the catalog and sync it into the similarity index",
	Long: `Sync reads every product from the catalog store, embeds it with the
configured embedding model and upserts the vectors into the similarity
index, creating the index first if it does not exist.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newCLILogger(cfg)

	ui.Section("Index Sync")
	ui.KeyValue("Index", cfg.Pinecone.Index)
	ui.KeyValue("Provider", cfg.Embedding.Provider)
	ui.KeyValue("Model", cfg.Embedding.Model)
	ui.Verbose("namespace: %q, batch size: %d", cfg.Pinecone.Namespace, cfg.Embedding.BatchSize)

	// Unlike the chat path, the sync fails fast on missing credentials.
	embedder, err := embedding.New(embedding.Config{
		Provider:    cfg.Embedding.Provider,
		Model:       cfg.Embedding.Model,
		Dimension:   cfg.Embedding.Dimension,
		Project:     cfg.Embedding.Project,
		Location:    cfg.Embedding.Location,
		AccessToken: cfg.Embedding.AccessToken,
		APIKey:      cfg.Generation.APIKey,
	})
	if err != nil {
		return fmt.Errorf("embedding provider: %w", err)
	}

	client, err := vector.NewClient(vector.Config{
		APIKey: cfg.Pinecone.APIKey,
		Cloud:  cfg.Pinecone.Cloud,
		Region: cfg.Pinecone.Region,
	})
	if err != nil {
		return fmt.Errorf("pinecone client: %w", err)
	}

	spin := ui.NewSpinner(fmt.Sprintf("preparing index %q", cfg.Pinecone.Index))
	spin.Start()
	index, err := client.EnsureIndex(ctx, cfg.Pinecone.Index, embedder.Dimension(), cfg.Pinecone.Cloud, cfg.Pinecone.Region)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	store := catalog.NewStore(logger, catalog.StoreConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.DatabaseDSN(),
	})
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("connect catalog store: %w", err)
	}
	defer store.Close()

	total, err := store.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if total == 0 {
		ui.Info("Catalog is empty, nothing to sync")
		return nil
	}

	bar := ui.NewProgressBar(total, "syncing products")
	syncer := ingest.NewSyncer(logger, store, embedder, index, cfg.Pinecone.Namespace, cfg.Embedding.BatchSize)
	syncer.OnBatch = func(done, _ int) { bar.Set(int64(done)) }

	synced, err := syncer.Sync(ctx)
	bar.Finish()
	if err != nil {
		ui.Error("Sync aborted after %d products", synced)
		return fmt.Errorf("sync failed: %w", err)
	}

	ui.Success("Synced %d products into %q", synced, cfg.Pinecone.Index)
	return nil
}
