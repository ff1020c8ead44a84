package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/data/redisStore"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

const conversationKeyPrefix = "conversation:"

// RedisMessageStore keeps the conversation log as a redis list. Entries expire with the
// session so nothing outlives it.
type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context, opts redisStore.Options) *RedisMessageStore {
	s := redisStore.GetRedisStore(ctx, opts, config.RedisMessageStore)
	if s == nil {
		return nil
	}
	return NewRedisMessageStore(s)
}

func NewRedisMessageStore(s *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  s,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func conversationKey(sessionId string) string {
	return conversationKeyPrefix + sessionId
}

func (s *RedisMessageStore) Append(ctx context.Context, sessionId string, msg chatModel.Message) error {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("session", sessionId)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err = s.store.ListPush(ctx, conversationKey(sessionId), data, config.RedisMessageStoreTTL); err != nil {
		log.Error("error saving message", "error", err)
		return err
	}
	log.Debug("Saved message", "role", msg.Role)
	return nil
}

func (s *RedisMessageStore) List(ctx context.Context, sessionId string) ([]chatModel.Message, error) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("session", sessionId)
	raw, err := s.store.ListGetAll(ctx, conversationKey(sessionId))
	if s.store.IsNil(err) {
		return []chatModel.Message{}, nil
	}
	if err != nil {
		log.Error("Error getting conversation", "error", err)
		return nil, err
	}

	messages := make([]chatModel.Message, 0, len(raw))
	for i, entry := range raw {
		var msg chatModel.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("decode message %d: %w", i, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisMessageStore) Clear(ctx context.Context, sessionId string) error {
	err := s.store.Del(ctx, conversationKey(sessionId))
	if err != nil && !s.store.IsNil(err) {
		s.logger.Error("Error clearing conversation", "session", sessionId, "error", err)
		return err
	}
	return nil
}
