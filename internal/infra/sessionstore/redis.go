package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"app/internal/cart"

	"github.com/go-redis/redis/v8"
)

// Redisをバックエンドに使うセッション媒体。
// カート状態と年齢確認フラグの両方をセッションIDでキー付けして持つ。
// TTLがセッションスコープを作る：リロードでは生き、放置で消える。
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// DI。redisAddrは "host:port" か "redis://..." 形式。
func NewRedisSessionStore(redisAddr string, ttl time.Duration) *RedisSessionStore {
	opts, err := redis.ParseURL(redisAddr)
	if err != nil {
		// "redis://..." 形式でない場合は単純に Addr として使う
		opts = &redis.Options{
			Addr:         redisAddr,
			MinIdleConns: 1,
			DialTimeout:  10 * time.Second,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			PoolSize:     10,
		}
	}

	return &RedisSessionStore{
		client: redis.NewClient(opts),
		ttl:    ttl,
	}
}

// 接続確認
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

func cartKey(sessionID string) string {
	return "session:" + sessionID + ":cart"
}

func ageKey(sessionID string) string {
	return "session:" + sessionID + ":age_verified"
}

// ---- cart.Storage ----

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (cart.State, bool, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.State{}, false, nil
	}
	if err != nil {
		return cart.State{}, false, err
	}

	var st cart.State
	if err := json.Unmarshal(data, &st); err != nil {
		return cart.State{}, false, err
	}
	return st, true, nil
}

// 変更のたびに丸ごと上書き。TTLも毎回延ばす（操作がある限りセッション継続）。
func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, state cart.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, cartKey(sessionID)).Err()
}

// ---- agegate.FlagStore ----

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (bool, error) {
	v, err := s.client.Get(ctx, ageKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *RedisSessionStore) Set(ctx context.Context, sessionID string) error {
	return s.client.Set(ctx, ageKey(sessionID), "true", s.ttl).Err()
}
