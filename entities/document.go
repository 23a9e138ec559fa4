package entities

import "time"

// Document is one unit of the knowledge base: a converted source file before
// splitting, or a chunk after it. Only chunks are persisted.
type Document struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Content   string         `json:"content"`
	Meta      map[string]any `gorm:"serializer:json" json:"meta"`
	Embedding Vector         `json:"-"`
	Dimension int            `gorm:"index" json:"-"`
	Score     *float64       `gorm:"-" json:"score,omitempty"`
	CreatedAt time.Time      `json:"-"`
}

// StoreInfo records which embedder produced the vectors in the store.
// There is at most one row (ID 1).
type StoreInfo struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	Embedder      string    `json:"embedder"`
	Dimension     int       `json:"dimension"`
	DocumentCount int       `json:"document_count"`
	IndexedAt     time.Time `json:"indexed_at"`
}

type PolicyRequest struct {
	Query string `json:"query"`
}

type PolicyResponse struct {
	Policy             string     `json:"policy"`
	RetrievedDocuments []Document `json:"retrieved_documents"`
}
