// FILE: pkg/rag/retriever/retriever.go
package retriever

import (
	"context"
	"strconv"

	"ai-mailassist-be/internal/repository/contract"
	"ai-mailassist-be/pkg/embedding"
	"ai-mailassist-be/pkg/errs"
	"ai-mailassist-be/pkg/store"
)

// Retriever is the search capability the pipeline's first stage consumes:
// a query in, an ordered (most similar first) document list out.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]store.Document, error)
}

// VectorRetriever embeds the query and runs a cosine-distance search against
// the pgvector-backed embedding table.
type VectorRetriever struct {
	repo     contract.DocumentEmbeddingRepository
	embedder embedding.EmbeddingProvider
}

var _ Retriever = &VectorRetriever{}

func NewVectorRetriever(repo contract.DocumentEmbeddingRepository, embedder embedding.EmbeddingProvider) *VectorRetriever {
	return &VectorRetriever{
		repo:     repo,
		embedder: embedder,
	}
}

func (r *VectorRetriever) Search(ctx context.Context, query string, limit int) ([]store.Document, error) {
	res, err := r.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, errs.Wrap(errs.KindExternalService, "query embedding failed", err)
	}

	embeddings, err := r.repo.SearchSimilar(ctx, res.Embedding.Values, limit)
	if err != nil {
		return nil, errs.Wrap(errs.KindExternalService, "vector search failed", err)
	}

	docs := make([]store.Document, 0, len(embeddings))
	for _, e := range embeddings {
		meta := map[string]string{
			store.MetaSource: e.Source,
			store.MetaPage:   strconv.Itoa(e.ChunkIndex),
		}
		if e.Snippet != "" {
			meta[store.MetaSnippet] = e.Snippet
		}
		docs = append(docs, store.Document{
			Content:  e.Document,
			Metadata: meta,
		})
	}
	return docs, nil
}
