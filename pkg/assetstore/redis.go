package assetstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces asset keys when no prefix is configured.
const DefaultRedisPrefix = "serenity:asset:"

// RedisStore keeps each asset as a JSON value under prefix+id.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key. Empty uses DefaultRedisPrefix.
	Prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStoreFromClient(client, opts.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

// Put upserts rec.
func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return RetryWithBackoff(ctx, func() error {
		return transient(s.client.Set(ctx, s.key(rec.ID), data, 0).Err())
	})
}

// Get reads the record for id.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, s.key(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return notFound(id)
		}
		return transient(err)
	})
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt asset %s: %w", id, err)
	}
	return &rec, nil
}

// GetAllKeys scans the prefix and returns the ids in sorted order.
func (s *RedisStore) GetAllKeys(ctx context.Context) ([]string, error) {
	var ids []string
	err := RetryWithBackoff(ctx, func() error {
		ids = ids[:0]
		iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			ids = append(ids, strings.TrimPrefix(iter.Val(), s.prefix))
		}
		return transient(iter.Err())
	})
	if err != nil {
		return nil, err
	}
	// SCAN may return a key more than once.
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// Delete removes id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return RetryWithBackoff(ctx, func() error {
		return transient(s.client.Del(ctx, s.key(id)).Err())
	})
}

// Count returns the number of keys under the prefix.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	ids, err := s.GetAllKeys(ctx)
	return len(ids), err
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
