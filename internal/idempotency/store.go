// Package idempotency remembers the outcome of POST requests keyed by the
// client's Idempotency-Key header.
package idempotency

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/sha3"
)

const keyPrefix = "idempotency:"

// Fingerprint hashes the JSON form of a decoded request, so the same payload
// sent with different whitespace or key order yields the same value.
func Fingerprint(req interface{}) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("fingerprint request: %w", err)
	}
	sum := sha3.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

// Record is what is kept under one key.
type Record struct {
	Status string `json:"status"`
	// Fingerprint identifies the request that claimed the key.
	Fingerprint  string `json:"fingerprint,omitempty"`
	ResponseCode int    `json:"response_code,omitempty"`
	ResponseBody string `json:"response_body,omitempty"`
}

type Store interface {
	// Begin claims key. It returns false when another request already holds it.
	Begin(ctx context.Context, key, fingerprint string) (bool, error)
	// Get returns nil when the key is unknown.
	Get(ctx context.Context, key string) (*Record, error)
	Complete(ctx context.Context, key, fingerprint string, code int, body []byte) error
	// Release forgets key so the client can retry.
	Release(ctx context.Context, key string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Begin(ctx context.Context, key, fingerprint string) (bool, error) {
	raw, err := json.Marshal(Record{Status: StatusInProgress, Fingerprint: fingerprint})
	if err != nil {
		return false, err
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+key, raw, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Complete(ctx context.Context, key, fingerprint string, code int, body []byte) error {
	raw, err := json.Marshal(Record{Status: StatusDone, Fingerprint: fingerprint, ResponseCode: code, ResponseBody: string(body)})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, raw, s.ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
