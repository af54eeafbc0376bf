package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/delphi-enrich-web/internal/constants"
	"github.com/kapu/delphi-enrich-web/internal/domain"
	"github.com/kapu/delphi-enrich-web/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisStore keeps snapshots as JSON strings with a TTL, so sessions survive
// a restart of the front end. A Manager serves its in-memory controller once
// one exists, so several instances need sticky sessions to agree.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(ctx context.Context, cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  constants.RedisConfig.DialTimeout,
		ReadTimeout:  constants.RedisConfig.ReadTimeout,
		WriteTimeout: constants.RedisConfig.WriteTimeout,
		PoolSize:     constants.RedisConfig.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.RedisConfig.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewSessionError("failed to connect to Redis", "ping", addr, err)
	}

	logger.Info("Redis connected",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
	)

	return NewRedisStoreWithClient(client, ttl, logger), nil
}

// NewRedisStoreWithClient wraps an existing client. The store owns it from
// then on and closes it in Close.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		prefix: constants.SessionConfig.RedisKeyPrefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (*domain.State, error) {
	key := s.key(id)
	value, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Session load failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewSessionError("load failed", "get", key, err)
	}

	var state domain.State
	if err := json.Unmarshal(value, &state); err != nil {
		s.logger.Error("Session unmarshal failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewSessionError("unmarshal failed", "get", key, err)
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, state *domain.State) error {
	key := s.key(id)
	jsonData, err := json.Marshal(state)
	if err != nil {
		return errors.NewSessionError("marshal failed", "set", key, err)
	}

	if err := s.client.Set(ctx, key, jsonData, s.ttl).Err(); err != nil {
		s.logger.Error("Session save failed", zap.String("key", key), zap.Error(err))
		return errors.NewSessionError("save failed", "set", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	key := s.key(id)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error("Session delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewSessionError("delete failed", "del", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
