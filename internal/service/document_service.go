// FILE: internal/service/document_service.go
package service

import (
	"context"

	"ai-mailassist-be/internal/dto"
	"ai-mailassist-be/internal/repository/contract"
)

type IDocumentService interface {
	Upload(ctx context.Context, filename, content string) (*dto.UploadDocumentResponse, error)
	CountEmbeddings(ctx context.Context) (int64, error)
}

type documentService struct {
	publisher     IPublisherService
	embeddingRepo contract.DocumentEmbeddingRepository
}

func NewDocumentService(publisher IPublisherService, embeddingRepo contract.DocumentEmbeddingRepository) IDocumentService {
	return &documentService{
		publisher:     publisher,
		embeddingRepo: embeddingRepo,
	}
}

// Upload queues the document for embedding. Ingestion is async; the response
// only confirms the document was accepted.
func (s *documentService) Upload(ctx context.Context, filename, content string) (*dto.UploadDocumentResponse, error) {
	if err := s.publisher.PublishEmbedDocument(filename, content); err != nil {
		return nil, err
	}
	return &dto.UploadDocumentResponse{
		Source: filename,
		Queued: true,
	}, nil
}

func (s *documentService) CountEmbeddings(ctx context.Context) (int64, error) {
	return s.embeddingRepo.Count(ctx)
}
