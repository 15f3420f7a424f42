package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jo-hoe/godiary/internal/core"
	"github.com/redis/go-redis/v9"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// FlashMessage is a one-shot notice shown on the next rendered page.
type FlashMessage struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// FlashStore keeps flash messages per browser session until they are popped.
type FlashStore interface {
	Add(ctx context.Context, sessionID string, message FlashMessage) error
	// Pop returns all pending messages of the session in insertion order and
	// removes them.
	Pop(ctx context.Context, sessionID string) ([]FlashMessage, error)
	Close() error
}

func NewFlashStore(config core.Flash) (FlashStore, error) {
	switch config.Type {
	case "", core.FlashTypeMemory:
		return NewMemoryFlashStore(config.TTL), nil
	case core.FlashTypeRedis:
		options, err := redis.ParseURL(config.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("parse flash redis url: %w", err)
		}
		return NewRedisFlashStore(redis.NewClient(options), "", config.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported flash store: %s", config.Type)
	}
}

type memoryFlashSession struct {
	messages  []FlashMessage
	expiresAt time.Time
}

type MemoryFlashStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memoryFlashSession
}

func NewMemoryFlashStore(ttl time.Duration) *MemoryFlashStore {
	return &MemoryFlashStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memoryFlashSession),
	}
}

func (s *MemoryFlashStore) Add(_ context.Context, sessionID string, message FlashMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)

	session, ok := s.sessions[sessionID]
	if !ok {
		session = &memoryFlashSession{}
		s.sessions[sessionID] = session
	}
	session.messages = append(session.messages, message)
	if s.ttl > 0 {
		session.expiresAt = now.Add(s.ttl)
	}
	return nil
}

func (s *MemoryFlashStore) Pop(_ context.Context, sessionID string) ([]FlashMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired(s.now())

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	delete(s.sessions, sessionID)
	return session.messages, nil
}

func (s *MemoryFlashStore) Close() error {
	return nil
}

func (s *MemoryFlashStore) evictExpired(now time.Time) {
	for id, session := range s.sessions {
		if !session.expiresAt.IsZero() && !now.Before(session.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

// RedisFlashStore keeps each session's messages in a list with a TTL.
type RedisFlashStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisFlashStore(client *redis.Client, prefix string, ttl time.Duration) *RedisFlashStore {
	if prefix == "" {
		prefix = "diary:flash:"
	}
	return &RedisFlashStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisFlashStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisFlashStore) Add(ctx context.Context, sessionID string, message FlashMessage) error {
	b, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal flash message: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.key(sessionID), b)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key(sessionID), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store flash message: %w", err)
	}
	return nil
}

func (s *RedisFlashStore) Pop(ctx context.Context, sessionID string) ([]FlashMessage, error) {
	var values *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		values = pipe.LRange(ctx, s.key(sessionID), 0, -1)
		pipe.Del(ctx, s.key(sessionID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pop flash messages: %w", err)
	}

	raw := values.Val()
	if len(raw) == 0 {
		return nil, nil
	}
	messages := make([]FlashMessage, 0, len(raw))
	for _, value := range raw {
		var message FlashMessage
		if err := json.Unmarshal([]byte(value), &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flash message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (s *RedisFlashStore) Close() error {
	return s.client.Close()
}
