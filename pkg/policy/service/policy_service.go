package service

import (
	"context"

	"policygen/entities"
)

// FallbackPolicy is returned as the policy text when no generator is configured.
const FallbackPolicy = "LLM generator is not configured. The following documents were retrieved from the knowledge base based on your query."

type PolicyService interface {
	GeneratePolicy(ctx context.Context, query string) (*entities.PolicyResponse, error)
	// GenerationEnabled is fixed for the life of the service.
	GenerationEnabled() bool
}
