package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentEmbedding is one embedded chunk of an ingested document (uploaded
// file or fetched mail message).
type DocumentEmbedding struct {
	Id             uuid.UUID
	Source         string // original filename or message id
	Snippet        string
	Document       string // the chunk text itself
	EmbeddingValue []float32
	ChunkIndex     int
	CreatedAt      time.Time
}
