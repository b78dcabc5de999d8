package dto

type SendChatRequest struct {
	Question string `json:"question" validate:"required,min=1"`
}

type SendChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type ChatMessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GetChatHistoryResponse struct {
	SessionId string           `json:"session_id"`
	Messages  []ChatMessageDTO `json:"messages"`
}
