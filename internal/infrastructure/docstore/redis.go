package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one string key per document and one set per parent that
// lists the keys of its children. Single-path transactions use WATCH/MULTI
// and are retried when the watched key changes.
type RedisStore struct {
	client     redis.UniversalClient
	keyPrefix  string
	maxRetries int
}

var _ Store = (*RedisStore)(nil)

// RedisOptions holds connection settings for NewRedisStore
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	KeyPrefix  string
	MaxRetries int
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, opts.KeyPrefix, opts.MaxRetries), nil
}

// NewRedisStoreWithClient wraps an existing client, useful in tests or when
// sharing a client across components
func NewRedisStoreWithClient(client redis.UniversalClient, keyPrefix string, maxRetries int) *RedisStore {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &RedisStore{
		client:     client,
		keyPrefix:  keyPrefix,
		maxRetries: maxRetries,
	}
}

func (s *RedisStore) docKey(path string) string {
	return s.keyPrefix + "doc:" + path
}

func (s *RedisStore) indexKey(parent string) string {
	return s.keyPrefix + "idx:" + parent
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.docKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", path, err)
	}
	return data, nil
}

// Set implements Store
func (s *RedisStore) Set(ctx context.Context, path string, value any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	data, err := encode(value)
	if err != nil {
		return err
	}
	parent, key := Split(path)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(path), data, 0)
		pipe.SAdd(ctx, s.indexKey(parent), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", path, err)
	}
	return nil
}

// Update implements Store
func (s *RedisStore) Update(ctx context.Context, path string, fields map[string]any) error {
	_, err := s.Transaction(ctx, path, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, ErrNotFound
		}
		return merge(current, fields)
	})
	return err
}

// Remove implements Store
func (s *RedisStore) Remove(ctx context.Context, path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	parent, key := Split(path)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.docKey(path))
		pipe.SRem(ctx, s.indexKey(parent), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis remove %s: %w", path, err)
	}
	return nil
}

// Push implements Store
func (s *RedisStore) Push(ctx context.Context, parent string, value any) (string, error) {
	id := NewID()
	if err := s.Set(ctx, Join(parent, id), value); err != nil {
		return "", err
	}
	return id, nil
}

// Children implements Store
func (s *RedisStore) Children(ctx context.Context, parent string) ([]Document, error) {
	return s.Query(ctx, parent, Query{})
}

// Query implements Store. Filtering happens client side after loading the
// children with a single MGET.
func (s *RedisStore) Query(ctx context.Context, parent string, q Query) ([]Document, error) {
	if err := ValidatePath(parent); err != nil {
		return nil, err
	}
	keys, err := s.client.SMembers(ctx, s.indexKey(parent)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s: %w", parent, err)
	}
	if len(keys) == 0 {
		return []Document{}, nil
	}
	sort.Strings(keys)

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = s.docKey(Join(parent, k))
	}
	values, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load %s: %w", parent, err)
	}

	docs := make([]Document, 0, len(keys))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// index entry left behind by a concurrent remove
			continue
		}
		docs = append(docs, Document{Key: keys[i], Path: Join(parent, keys[i]), Data: []byte(str)})
	}
	return applyQuery(docs, q)
}

// Transaction implements Store
func (s *RedisStore) Transaction(ctx context.Context, path string, fn TxFunc) (TxResult, error) {
	if err := ValidatePath(path); err != nil {
		return TxResult{}, err
	}
	key := s.docKey(path)
	parent, child := Split(path)

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var (
			result TxResult
			fnErr  error
		)
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				current = nil
			} else if err != nil {
				return err
			}

			next, aborted, err := runTx(fn, current)
			if err != nil {
				fnErr = err
				return nil
			}
			if aborted {
				result = TxResult{Snapshot: current}
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if next == nil {
					pipe.Del(ctx, key)
					pipe.SRem(ctx, s.indexKey(parent), child)
					return nil
				}
				pipe.Set(ctx, key, next, 0)
				pipe.SAdd(ctx, s.indexKey(parent), child)
				return nil
			})
			if err != nil {
				return err
			}
			result = TxResult{Committed: true, Snapshot: next}
			return nil
		}, key)

		switch {
		case fnErr != nil:
			return TxResult{}, fnErr
		case err == nil:
			return result, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return TxResult{}, fmt.Errorf("redis transaction %s: %w", path, err)
		}
	}
	return TxResult{}, ErrTooManyRetries
}

// Ping implements Store
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements Store
func (s *RedisStore) Close() error {
	return s.client.Close()
}
