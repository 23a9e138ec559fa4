package serviceImp

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"policygen/entities"
	"policygen/pkg/ai"
	"policygen/pkg/policy/service"
	"policygen/pkg/prompt"
)

// Retriever is the part of the knowledge base the policy flow needs.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]entities.Document, error)
}

// Svc is immutable after New and safe for concurrent use.
type Svc struct {
	retriever Retriever
	llm       ai.Generator
	topK      int
	log       logrus.FieldLogger
}

var _ service.PolicyService = (*Svc)(nil)

// New wires the serving flow. A nil llm disables generation: responses then
// carry the fallback text alongside the retrieved documents.
func New(r Retriever, llm ai.Generator, topK int, log logrus.FieldLogger) *Svc {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Svc{retriever: r, llm: llm, topK: topK, log: log.WithField("component", "policy")}
}

func (s *Svc) GenerationEnabled() bool { return s.llm != nil }

func (s *Svc) GeneratePolicy(ctx context.Context, query string) (*entities.PolicyResponse, error) {
	docs, err := s.retriever.Search(ctx, query, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if docs == nil {
		docs = []entities.Document{}
	}

	if s.llm == nil {
		return &entities.PolicyResponse{Policy: service.FallbackPolicy, RetrievedDocuments: docs}, nil
	}

	p, err := prompt.Build(query, docs)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}
	text, err := s.llm.Generate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	s.log.WithFields(logrus.Fields{"documents": len(docs), "model": s.llm.Model()}).Debug("policy generated")
	return &entities.PolicyResponse{Policy: text, RetrievedDocuments: docs}, nil
}
