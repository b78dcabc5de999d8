// FILE: pkg/rag/memory/history.go
// PURPOSE: Durable, session-keyed conversation transcript on Redis. One list
// per session under "chat:{sessionId}", append-only; trimming is an external
// operational policy, never done here.

package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-mailassist-be/pkg/errs"
	"ai-mailassist-be/pkg/llm"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat:"

type ConversationStore struct {
	rdb *redis.Client
}

// NewConversationStore takes an injected client; the store never owns a
// process-wide connection.
func NewConversationStore(rdb *redis.Client) *ConversationStore {
	return &ConversationStore{rdb: rdb}
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Load returns the ordered transcript for a session. An unseen session id
// yields an empty slice, not an error.
func (s *ConversationStore) Load(ctx context.Context, sessionID string) ([]llm.Message, error) {
	raw, err := s.rdb.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, errs.Wrap(errs.KindExternalService, "conversation store load failed", err)
	}

	messages := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		var msg llm.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, errs.Wrap(errs.KindExternalService,
				fmt.Sprintf("corrupt message in transcript %s", sessionID), err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Append pushes one user message followed by one assistant message. The
// caller invokes this exactly once per successful pipeline run; there is no
// buffering or retry here.
func (s *ConversationStore) Append(ctx context.Context, sessionID, userText, assistantText string) error {
	userJSON, err := json.Marshal(llm.Message{Role: llm.RoleUser, Content: userText})
	if err != nil {
		return errs.Wrap(errs.KindExternalService, "marshal user message", err)
	}
	assistantJSON, err := json.Marshal(llm.Message{Role: llm.RoleAssistant, Content: assistantText})
	if err != nil {
		return errs.Wrap(errs.KindExternalService, "marshal assistant message", err)
	}

	if err := s.rdb.RPush(ctx, sessionKey(sessionID), userJSON, assistantJSON).Err(); err != nil {
		return errs.Wrap(errs.KindExternalService, "conversation store append failed", err)
	}
	return nil
}
