// Package main provides the catalog assistant API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/chat"
	"github.com/shopsense-ai/catalog-assistant/internal/config"
	"github.com/shopsense-ai/catalog-assistant/internal/embedding"
	"github.com/shopsense-ai/catalog-assistant/internal/genai"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
	"github.com/shopsense-ai/catalog-assistant/internal/retrieval"
	"github.com/shopsense-ai/catalog-assistant/internal/vector"
)

func main() {
	// Local development reads credentials from a .env file; a missing file
	// is fine in deployment.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "catalog-assistant",
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("index", cfg.Pinecone.Index).
		Msg("Starting catalog assistant API")

	// The catalog store must be up before the server takes traffic.
	store := catalog.NewStore(logger, catalog.StoreConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.DatabaseDSN(),
		MaxOpenConns:    cfg.Database.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Database.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.Postgres.ConnMaxLifetime,
	})
	if err := store.Connect(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect catalog store")
	}
	defer store.Close()

	listing := catalog.NewListingService(store)
	generator := chat.NewGenerator(logger, buildRetriever(logger, cfg), genai.Config{
		APIKey:  cfg.Generation.APIKey,
		Model:   cfg.Generation.Model,
		Timeout: cfg.Generation.Timeout,
	})

	router := NewRouter(logger, cfg.Server.WriteTimeout, generator, listing)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}

// buildRetriever wires the embedding provider and the similarity index into a
// retriever. Missing credentials or an unreachable index are not fatal: the
// chat endpoint stays up and answers with no retrieved context.
func buildRetriever(logger *observability.Logger, cfg *config.Config) *retrieval.Retriever {
	var embedder retrieval.Embedder
	provider, err := embedding.New(embedding.Config{
		Provider:    cfg.Embedding.Provider,
		Model:       cfg.Embedding.Model,
		Dimension:   cfg.Embedding.Dimension,
		Project:     cfg.Embedding.Project,
		Location:    cfg.Embedding.Location,
		AccessToken: cfg.Embedding.AccessToken,
		APIKey:      cfg.Generation.APIKey,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Embedding provider unavailable, chat will run without context")
		embedder = unavailableEmbedder{err: err}
	} else {
		embedder = provider
	}

	var index retrieval.Querier
	index = unavailableIndex{err: fmt.Errorf("similarity index is not configured")}
	if cfg.Pinecone.APIKey != "" {
		client, err := vector.NewClient(vector.Config{
			APIKey: cfg.Pinecone.APIKey,
			Cloud:  cfg.Pinecone.Cloud,
			Region: cfg.Pinecone.Region,
		})
		if err == nil {
			idx, err := client.Index(context.Background(), cfg.Pinecone.Index)
			if err != nil {
				logger.Warn().Err(err).Str("index", cfg.Pinecone.Index).Msg("Similarity index unreachable, chat will run without context")
				index = unavailableIndex{err: err}
			} else {
				index = idx
			}
		}
	} else {
		logger.Warn().Msg("PINECONE_API_KEY is not set, chat will run without context")
	}

	return retrieval.NewRetriever(logger, embedder, index, cfg.Pinecone.Namespace, cfg.Retrieval.TopK)
}

type unavailableEmbedder struct{ err error }

func (u unavailableEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, u.err
}

type unavailableIndex struct{ err error }

func (u unavailableIndex) Query(ctx context.Context, queryVec []float32, topK int, namespace string) ([]vector.SearchHit, error) {
	return nil, u.err
}
