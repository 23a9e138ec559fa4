package embedder

import (
	"context"
	"errors"

	"policygen/config"
)

// Embedder turns text into fixed-length vectors. Documents and queries must
// go through the same Embedder for their vectors to be comparable.
type Embedder interface {
	// Name identifies the model; it is recorded in the store at index time.
	Name() string
	// Dimension is 0 until known (remote embedders learn it on first use).
	Dimension() int
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

var ErrEmptyEmbedding = errors.New("embedder returned an empty vector")

// New picks the remote embedder when EMB_ENDPOINT is set, the local hashing
// embedder otherwise.
func New(cfg config.AppConfig) Embedder {
	if cfg.EmbEndpoint == "" {
		return NewHashing(HashingDimension)
	}
	return NewOpenAI(OpenAIConfig{
		BaseURL:   cfg.EmbEndpoint,
		APIKey:    cfg.EmbAPIKey,
		Model:     cfg.EmbModel,
		BatchSize: cfg.EmbBatchSize,
		RateLimit: cfg.EmbRateLimit,
	})
}
