// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"ai-mailassist-be/internal/dto"
	"ai-mailassist-be/internal/entity"
	"ai-mailassist-be/internal/pkg/logger"
	"ai-mailassist-be/internal/repository/contract"
	"ai-mailassist-be/pkg/embedding"
	"ai-mailassist-be/pkg/utils"
)

const snippetLength = 200

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	embeddingRepo     contract.DocumentEmbeddingRepository
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	embeddingRepo contract.DocumentEmbeddingRepository,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		embeddingRepo:     embeddingRepo,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("ConsumerService", fmt.Sprintf("Processing document embedding for source: %s", payload.Source), map[string]interface{}{"content_length": len(payload.Content)})

	// ChunkSize: 1500 chars (approx 375 tokens), Overlap: 200 chars
	chunks := utils.SplitText(payload.Content, 1500, 200)
	cs.logger.Info("ConsumerService", "Content split into chunks", map[string]interface{}{"source": payload.Source, "chunks": len(chunks)})

	var newEmbeddings []*entity.DocumentEmbedding

	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			cs.logger.Error("ConsumerService", fmt.Sprintf("Failed to generate embedding for chunk %d of %s", i, payload.Source), map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}

		snippet := chunk
		if len(snippet) > snippetLength {
			snippet = snippet[:snippetLength]
		}

		newEmbeddings = append(newEmbeddings, &entity.DocumentEmbedding{
			Id:             uuid.New(),
			Source:         payload.Source,
			Snippet:        snippet,
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	// Re-uploading the same source replaces its embeddings atomically.
	if err := cs.embeddingRepo.ReplaceForSource(ctx, payload.Source, newEmbeddings); err != nil {
		cs.logger.Error("ConsumerService", fmt.Sprintf("Failed to store embeddings for %s", payload.Source), map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	cs.logger.Info("ConsumerService", fmt.Sprintf("Stored %d embeddings for source %s", len(newEmbeddings), payload.Source), nil)
	msg.Ack()
}
