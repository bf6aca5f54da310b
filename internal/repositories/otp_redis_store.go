package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c4gt/bounce/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisOTPStore shares records between API instances.
//
// Keys live until ExpiresAt plus a retention period, so a code that expired
// recently is still found and reported as expired rather than missing.
type RedisOTPStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
	now       func() time.Time
}

func NewRedisOTPStore(client *redis.Client, prefix string, retention time.Duration) *RedisOTPStore {
	return &RedisOTPStore{
		client:    client,
		prefix:    prefix,
		retention: retention,
		now:       time.Now,
	}
}

// NewRedisClient parses url, connects and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func (s *RedisOTPStore) key(identifier string) string {
	return s.prefix + identifier
}

func (s *RedisOTPStore) Put(ctx context.Context, record *models.OTPRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode otp record: %w", err)
	}

	ttl := record.ExpiresAt.Sub(s.now()) + s.retention
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := s.client.Set(ctx, s.key(record.Identifier), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp record: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) Get(ctx context.Context, identifier string) (*models.OTPRecord, error) {
	return loadOTPRecord(ctx, s.client, s.key(identifier))
}

// Delete watches the key so a Put landing between the comparison and the
// DEL aborts the transaction instead of losing the new code.
func (s *RedisOTPStore) Delete(ctx context.Context, record *models.OTPRecord) (bool, error) {
	key := s.key(record.Identifier)
	deleted := false

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := loadOTPRecord(ctx, tx, key)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !current.SameIssue(record) {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err != nil {
			return err
		}
		deleted = true
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete otp record: %w", err)
	}
	return deleted, nil
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func loadOTPRecord(ctx context.Context, c stringGetter, key string) (*models.OTPRecord, error) {
	payload, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load otp record: %w", err)
	}

	var record models.OTPRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to decode otp record: %w", err)
	}
	return &record, nil
}
