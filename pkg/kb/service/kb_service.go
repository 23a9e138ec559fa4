package service

import (
	"context"
	"errors"

	"policygen/entities"
)

var ErrNoInputFiles = errors.New("no input files found")

type IndexReport struct {
	Files     []string `json:"files"`
	Chunks    int      `json:"chunks"`
	Embedder  string   `json:"embedder"`
	Dimension int      `json:"dimension"`
	Skipped   bool     `json:"skipped"`
}

type Stats struct {
	Documents int64               `json:"documents"`
	Info      *entities.StoreInfo `json:"info"`
}

type KBService interface {
	// Index replaces the store content with the chunks of every matching
	// file in dir. With no matching files it leaves the store untouched and
	// returns a report with Skipped set.
	Index(ctx context.Context, dir string) (IndexReport, error)
	// Search returns the k documents most similar to query (k <= 0 means
	// the configured default).
	Search(ctx context.Context, query string, k int) ([]entities.Document, error)
	Stats(ctx context.Context) (Stats, error)
}
