// Package storage provides the persistent collaborators behind the engine's
// provider interfaces: a gorm-backed config/inventory store and a
// Redis-backed conversation history.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"sales-engine/pkg"
)

// RedisHistory stores conversation turns per dealership and conversation,
// append-only, oldest first, expiring after the configured TTL of inactivity.
type RedisHistory struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisHistory connects to Redis using a redis:// URL.
func NewRedisHistory(ctx context.Context, url string, ttl time.Duration) (*RedisHistory, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &RedisHistory{client: client, ttl: ttl}, nil
}

func historyKey(dealershipID int64, conversationID string) string {
	return fmt.Sprintf("conversation:%d:%s", dealershipID, conversationID)
}

// GetHistory returns the stored turns, or an empty slice for an unknown
// conversation. Reading refreshes the TTL.
func (r *RedisHistory) GetHistory(ctx context.Context, dealershipID int64, conversationID string) ([]pkg.ConversationMessage, error) {
	key := historyKey(dealershipID, conversationID)
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("loading history: %w", err)
	}

	var history []pkg.ConversationMessage
	if err := sonic.Unmarshal([]byte(data), &history); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	r.client.Expire(ctx, key, r.ttl)
	return history, nil
}

// AppendMessage adds one turn to the conversation.
func (r *RedisHistory) AppendMessage(ctx context.Context, dealershipID int64, conversationID string, msg pkg.ConversationMessage) error {
	history, err := r.GetHistory(ctx, dealershipID, conversationID)
	if err != nil {
		return err
	}
	history = append(history, msg)

	data, err := sonic.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := r.client.Set(ctx, historyKey(dealershipID, conversationID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (r *RedisHistory) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the connection.
func (r *RedisHistory) Close() error {
	return r.client.Close()
}
