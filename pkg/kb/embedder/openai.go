package embedder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"
)

type OpenAIConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	BatchSize int
	// RateLimit is requests per second; 0 disables pacing.
	RateLimit float64
}

// OpenAI calls any server that speaks the OpenAI embeddings API
// (llama.cpp server, Ollama, text-embeddings-inference, OpenAI itself).
type OpenAI struct {
	client    openai.Client
	model     string
	batchSize int
	limiter   *rate.Limiter
	dim       atomic.Int64
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
	}
	key := cfg.APIKey
	if key == "" {
		// local servers ignore it, the SDK insists on one
		key = "unused"
	}
	opts = append(opts, option.WithAPIKey(key))

	bs := cfg.BatchSize
	if bs <= 0 {
		bs = 32
	}
	e := &OpenAI{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		batchSize: bs,
	}
	if cfg.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return e
}

func (e *OpenAI) Name() string   { return "openai:" + e.model }
func (e *OpenAI) Dimension() int { return int(e.dim.Load()) }

func (e *OpenAI) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *OpenAI) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *OpenAI) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([][]float32, len(data))
	for i, d := range data {
		if len(d.Embedding) == 0 {
			return nil, ErrEmptyEmbedding
		}
		v := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			v[j] = float32(f)
		}
		if err := e.observe(len(v)); err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// observe pins the dimension on first use and rejects later drift.
func (e *OpenAI) observe(n int) error {
	if e.dim.CompareAndSwap(0, int64(n)) {
		return nil
	}
	if got := int(e.dim.Load()); got != n {
		return fmt.Errorf("embedding dimension changed from %d to %d", got, n)
	}
	return nil
}
