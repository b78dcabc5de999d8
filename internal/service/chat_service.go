// FILE: internal/service/chat_service.go
package service

import (
	"context"

	"ai-mailassist-be/internal/dto"
	"ai-mailassist-be/pkg/rag/pipeline"
)

type IChatService interface {
	SendChat(ctx context.Context, sessionId string, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetHistory(ctx context.Context, sessionId string) (*dto.GetChatHistoryResponse, error)
}

type chatService struct {
	engine        *pipeline.Engine
	conversations pipeline.ConversationMemory
}

func NewChatService(engine *pipeline.Engine, conversations pipeline.ConversationMemory) IChatService {
	return &chatService{
		engine:        engine,
		conversations: conversations,
	}
}

func (s *chatService) SendChat(ctx context.Context, sessionId string, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	res, err := s.engine.Invoke(ctx, sessionId, req.Question)
	if err != nil {
		return nil, err
	}

	return &dto.SendChatResponse{
		Answer:  res.Answer,
		Sources: res.Sources,
	}, nil
}

func (s *chatService) GetHistory(ctx context.Context, sessionId string) (*dto.GetChatHistoryResponse, error) {
	messages, err := s.conversations.Load(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ChatMessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, dto.ChatMessageDTO{Role: m.Role, Content: m.Content})
	}

	return &dto.GetChatHistoryResponse{
		SessionId: sessionId,
		Messages:  out,
	}, nil
}
