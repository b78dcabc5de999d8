package contract

import (
	"context"

	"ai-mailassist-be/internal/entity"
)

type DocumentEmbeddingRepository interface {
	CreateBulk(ctx context.Context, embeddings []*entity.DocumentEmbedding) error
	DeleteBySource(ctx context.Context, source string) error
	ReplaceForSource(ctx context.Context, source string, embeddings []*entity.DocumentEmbedding) error
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.DocumentEmbedding, error)
	Count(ctx context.Context) (int64, error)
}
