package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"policygen/config"
	"policygen/pkg/ai"
	"policygen/pkg/kb/converter"
	"policygen/pkg/kb/embedder"
	"policygen/pkg/kb/repository"
	"policygen/pkg/kb/repositoryImp"
	kbServiceImp "policygen/pkg/kb/serviceImp"
	"policygen/pkg/kb/splitter"
	policyServiceImp "policygen/pkg/policy/serviceImp"
)

var ErrEmbedderMismatch = errors.New("store was indexed with a different embedder")

// Pipeline is the serving side, built once at startup and never mutated.
type Pipeline struct {
	KB                *kbServiceImp.Svc
	Policy            *policyServiceImp.Svc
	GenerationEnabled bool
}

// NewKB assembles the knowledge base used by both indexing and serving.
func NewKB(cfg config.AppConfig, db *gorm.DB, emb embedder.Embedder, log logrus.FieldLogger) (*kbServiceImp.Svc, error) {
	sp, err := splitter.New(cfg.SplitLength, cfg.SplitOverlap)
	if err != nil {
		return nil, err
	}
	conv := converter.NewRegistry()
	for _, ext := range cfg.IndexExtensions {
		if !conv.Supports(ext) {
			return nil, fmt.Errorf("no converter for %q (supported: %v)", ext, conv.Extensions())
		}
	}
	return kbServiceImp.New(repositoryImp.New(db), emb, conv, sp, kbServiceImp.Options{
		Extensions: cfg.IndexExtensions,
		TopK:       cfg.TopK,
		Logger:     log,
	}), nil
}

// CheckStore fails when the store holds vectors from another embedder.
// An empty, never-indexed store is accepted.
func CheckStore(ctx context.Context, repo repository.KBRepository, emb embedder.Embedder) error {
	info, err := repo.Info(ctx)
	if err != nil {
		return fmt.Errorf("read store info: %w", err)
	}
	if info == nil {
		return nil
	}
	if info.Embedder != emb.Name() {
		return fmt.Errorf("%w: store has %q, configured %q", ErrEmbedderMismatch, info.Embedder, emb.Name())
	}
	if info.Dimension == 0 {
		return nil
	}
	dim := emb.Dimension()
	if dim == 0 {
		v, err := emb.EmbedQuery(ctx, "dimension probe")
		if err != nil {
			return fmt.Errorf("probe embedder: %w", err)
		}
		dim = len(v)
	}
	if dim != info.Dimension {
		return fmt.Errorf("%w: store has dimension %d, embedder produces %d", ErrEmbedderMismatch, info.Dimension, dim)
	}
	return nil
}

// Build constructs the serving pipeline. Generation is enabled only when
// cfg.LLMModelPath names an existing file; otherwise a warning is logged and
// the pipeline answers with retrieved documents only.
func Build(ctx context.Context, cfg config.AppConfig, db *gorm.DB, log logrus.FieldLogger) (*Pipeline, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "pipeline")

	emb := embedder.New(cfg)
	kb, err := NewKB(cfg, db, emb, log)
	if err != nil {
		return nil, err
	}
	if err := CheckStore(ctx, repositoryImp.New(db), emb); err != nil {
		return nil, err
	}

	var llm ai.Generator
	switch {
	case cfg.LLMModelPath == "":
		log.Warn("LLM_MODEL_PATH is not set; generation disabled, responses will list retrieved documents only")
	case !ai.ModelAvailable(cfg.LLMModelPath):
		log.WithField("path", cfg.LLMModelPath).Warn("LLM model file not found; generation disabled")
	default:
		g, err := ai.NewLlamaCpp(ai.LlamaCppConfig{
			ModelPath:   cfg.LLMModelPath,
			Endpoint:    cfg.LLMEndpoint,
			ContextSize: cfg.LLMContextSize,
			MaxTokens:   cfg.LLMMaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("init generator: %w", err)
		}
		llm = g
		log.WithFields(logrus.Fields{"model": g.Model(), "endpoint": cfg.LLMEndpoint}).Info("generation enabled")
	}

	log.WithField("embedder", emb.Name()).Info("pipeline ready")
	return &Pipeline{
		KB:                kb,
		Policy:            policyServiceImp.New(kb, llm, cfg.TopK, log),
		GenerationEnabled: llm != nil,
	}, nil
}
