package repository

import (
	"context"

	"policygen/entities"
)

type KBRepository interface {
	// ReplaceAll swaps the whole store content for docs in one transaction
	// and records info alongside it.
	ReplaceAll(ctx context.Context, docs []entities.Document, info entities.StoreInfo) error
	Count(ctx context.Context) (int64, error)
	// Info returns nil when the store has never been indexed.
	Info(ctx context.Context) (*entities.StoreInfo, error)
	// Query returns at most k documents ordered by descending cosine
	// similarity to vec, each with Score set.
	Query(ctx context.Context, vec entities.Vector, k int) ([]entities.Document, error)
	Get(ctx context.Context, id string) (*entities.Document, error)
	Ping(ctx context.Context) error
}
