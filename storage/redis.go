package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/ruteri/royalty-registry/interfaces"
)

const (
	defaultRedisMaxRetries = 200

	redisRetryInitialInterval = time.Millisecond
	redisRetryMaxInterval     = 50 * time.Millisecond
)

// RedisStore persists royalty configs as JSON values in Redis.
// Update is an optimistic WATCH/MULTI transaction on the asset's key,
// retried with jittered exponential backoff when another writer touched the
// key first. Retries stop with ctx's error when ctx is done, and with
// interfaces.ErrWriteConflict after maxRetries lost races.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	maxRetries int
	log        *slog.Logger
}

// NewRedisStore creates a store keyed under prefix.
func NewRedisStore(client redis.UniversalClient, prefix string, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}
	return &RedisStore{
		client:     client,
		prefix:     prefix,
		maxRetries: defaultRedisMaxRetries,
		log:        log,
	}
}

// SetMaxRetries bounds how many times a conflicting Update is retried.
// Non-positive values are ignored.
func (s *RedisStore) SetMaxRetries(n int) {
	if n > 0 {
		s.maxRetries = n
	}
}

func (s *RedisStore) key(asset interfaces.Address) string {
	if s.prefix == "" {
		return "royalty:" + strings.ToLower(asset.Hex())
	}
	return s.prefix + ":royalty:" + strings.ToLower(asset.Hex())
}

func (s *RedisStore) Load(ctx context.Context, asset interfaces.Address) (interfaces.RoyaltyConfig, bool, error) {
	data, err := s.client.Get(ctx, s.key(asset)).Bytes()
	return decodeRedisConfig(data, err)
}

func (s *RedisStore) Update(ctx context.Context, asset interfaces.Address, fn interfaces.UpdateFunc) error {
	key := s.key(asset)
	attempt := 0

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		current, exists, err := decodeRedisConfig(data, err)
		if err != nil {
			return err
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}

		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode royalty config: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	operation := func() error {
		attempt++
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("Royalty config changed concurrently, retrying",
				slog.String("asset", asset.Hex()),
				slog.Int("attempt", attempt))
			return err
		}
		if err != nil {
			return backoff.Permanent(classifyRedisError(err))
		}
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(s.newBackOff(), ctx))
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: update of %s lost %d races", interfaces.ErrWriteConflict, asset.Hex(), attempt)
	}
	return err
}

func (s *RedisStore) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = redisRetryInitialInterval
	b.MaxInterval = redisRetryMaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(s.maxRetries))
}

// classifyRedisError marks backend failures as interfaces.ErrStoreUnavailable
// and passes registry and context errors through.
func classifyRedisError(err error) error {
	switch {
	case errors.Is(err, interfaces.ErrAlreadyLocked),
		errors.Is(err, interfaces.ErrInvalidFeeRate),
		errors.Is(err, interfaces.ErrStaleRevision),
		errors.Is(err, interfaces.ErrStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	var redisErr redis.Error
	if errors.As(err, &redisErr) || isNetworkError(err) {
		return fmt.Errorf("%w: %w", interfaces.ErrStoreUnavailable, err)
	}
	return err
}

// Available pings the Redis server.
func (s *RedisStore) Available(ctx context.Context) bool {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.log.Debug("Redis store unavailable", "err", err)
		return false
	}
	return true
}

func (s *RedisStore) Name() string {
	if s.prefix == "" {
		return "redis"
	}
	return "redis-" + s.prefix
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeRedisConfig(data []byte, err error) (interfaces.RoyaltyConfig, bool, error) {
	if errors.Is(err, redis.Nil) {
		return interfaces.RoyaltyConfig{}, false, nil
	}
	if err != nil {
		return interfaces.RoyaltyConfig{}, false, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	var config interfaces.RoyaltyConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return interfaces.RoyaltyConfig{}, false, fmt.Errorf("decode royalty config: %w", err)
	}
	return config, true, nil
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, redis.ErrClosed)
}
