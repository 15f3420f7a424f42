package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jo-hoe/godiary/internal/common"
	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "diary:"

// RedisDatabase keeps one hash per entry and a sorted set of entry ids
// scored by created_at millis.
type RedisDatabase struct {
	client *redis.Client
	prefix string
}

func NewRedisDatabase(connectionString string) (DatabaseService, error) {
	options, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisDatabaseFromClient(redis.NewClient(options), defaultRedisKeyPrefix), nil
}

func NewRedisDatabaseFromClient(client *redis.Client, prefix string) *RedisDatabase {
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}
	return &RedisDatabase{client: client, prefix: prefix}
}

func (r *RedisDatabase) sequenceKey() string {
	return r.prefix + "entries:seq"
}

func (r *RedisDatabase) indexKey() string {
	return r.prefix + "entries:by_created"
}

func (r *RedisDatabase) entryKey(id int64) string {
	return r.prefix + "entry:" + strconv.FormatInt(id, 10)
}

// CreateDatabase has no schema to create; it only checks connectivity.
func (r *RedisDatabase) CreateDatabase(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *RedisDatabase) DoesDatabaseExist(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}

func (r *RedisDatabase) Close() error {
	return r.client.Close()
}

func (r *RedisDatabase) CreateEntry(ctx context.Context, content string, createdAt time.Time) (*Entry, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	createdAt = normalizeCreatedAt(createdAt)

	id, err := r.client.Incr(ctx, r.sequenceKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate entry id: %w", err)
	}

	millis := toMillis(createdAt)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.entryKey(id), "content", content, "created_at", millis)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(millis), Member: id})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store entry %d: %w", id, err)
	}

	return &Entry{ID: id, Content: content, CreatedAt: createdAt}, nil
}

func (r *RedisDatabase) GetEntryByID(ctx context.Context, id int64) (*Entry, error) {
	values, err := r.client.HGetAll(ctx, r.entryKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %d: %w", id, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("entry %d: %w", id, common.ErrNotFound)
	}
	return entryFromHash(id, values)
}

func (r *RedisDatabase) DeleteEntry(ctx context.Context, id int64) error {
	var deleted *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, r.entryKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	if deleted.Val() == 0 {
		return fmt.Errorf("entry %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *RedisDatabase) GetAllEntries(ctx context.Context) ([]*Entry, error) {
	return r.rangeEntries(ctx, &redis.ZRangeBy{Min: "-inf", Max: "+inf"})
}

func (r *RedisDatabase) GetEntriesBetween(ctx context.Context, from, to time.Time) ([]*Entry, error) {
	return r.rangeEntries(ctx, &redis.ZRangeBy{
		Min: strconv.FormatInt(toMillis(from), 10),
		Max: "(" + strconv.FormatInt(toMillis(to), 10),
	})
}

func (r *RedisDatabase) rangeEntries(ctx context.Context, rangeBy *redis.ZRangeBy) ([]*Entry, error) {
	members, err := r.client.ZRangeByScore(ctx, r.indexKey(), rangeBy).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to range entries: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid entry id %q in index: %w", member, err)
		}
		ids = append(ids, id)
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, r.entryKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	entries := make([]*Entry, 0, len(ids))
	for i, cmd := range cmds {
		values := cmd.Val()
		if len(values) == 0 {
			// index and hash are written together; a missing hash means a concurrent delete
			continue
		}
		entry, err := entryFromHash(ids[i], values)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func entryFromHash(id int64, values map[string]string) (*Entry, error) {
	millis, err := strconv.ParseInt(values["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for entry %d: %w", id, err)
	}
	return &Entry{
		ID:        id,
		Content:   values["content"],
		CreatedAt: fromMillis(millis),
	}, nil
}
