package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"hr-assistant/internal/ai"
)

// History stores the recent conversation of each user.
type History interface {
	// Recent returns the retained messages for userID, oldest first.
	Recent(ctx context.Context, userID string) ([]ai.Message, error)
	// Append adds messages and drops anything older than the window.
	Append(ctx context.Context, userID string, msgs ...ai.Message) error
}

func historyKey(userID string) string {
	return "chat_history:" + userID
}

// RedisHistory keeps each user's last window turns in a Redis list.
type RedisHistory struct {
	client redis.Cmdable
	window int
}

// NewRedisHistory keeps window user/assistant turns, i.e. 2*window messages.
func NewRedisHistory(client redis.Cmdable, window int) *RedisHistory {
	if window <= 0 {
		window = 5
	}
	return &RedisHistory{client: client, window: window}
}

func (h *RedisHistory) Recent(ctx context.Context, userID string) ([]ai.Message, error) {
	raw, err := h.client.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	out := make([]ai.Message, 0, len(raw))
	for _, entry := range raw {
		var m ai.Message
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (h *RedisHistory) Append(ctx context.Context, userID string, msgs ...ai.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode history entry: %w", err)
		}
		values = append(values, string(b))
	}

	key := historyKey(userID)
	_, err := h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, int64(-2*h.window), -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// LocalHistory is an in-process History for the CLI and tests.
type LocalHistory struct {
	mu     sync.Mutex
	window int
	turns  map[string][]ai.Message
}

// NewLocalHistory keeps window turns per user in memory.
func NewLocalHistory(window int) *LocalHistory {
	if window <= 0 {
		window = 5
	}
	return &LocalHistory{window: window, turns: make(map[string][]ai.Message)}
}

func (h *LocalHistory) Recent(_ context.Context, userID string) ([]ai.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ai.Message, len(h.turns[userID]))
	copy(out, h.turns[userID])
	return out, nil
}

func (h *LocalHistory) Append(_ context.Context, userID string, msgs ...ai.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	all := append(h.turns[userID], msgs...)
	if limit := 2 * h.window; len(all) > limit {
		all = append([]ai.Message(nil), all[len(all)-limit:]...)
	}
	h.turns[userID] = all
	return nil
}

var (
	_ History = (*RedisHistory)(nil)
	_ History = (*LocalHistory)(nil)
)
