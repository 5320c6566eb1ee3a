package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultCheckoutTTL = time.Hour

	checkoutKeyPrefix = "checkout:"
)

// RedisCheckoutStore keeps card checkouts between the payment request and
// the gateway's notification.
type RedisCheckoutStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCheckoutStore(client *redis.Client, ttl time.Duration) *RedisCheckoutStore {
	if ttl <= 0 {
		ttl = DefaultCheckoutTTL
	}
	return &RedisCheckoutStore{client: client, ttl: ttl}
}

func (s *RedisCheckoutStore) Save(ctx context.Context, session models.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}

	if err := s.client.Set(ctx, checkoutKeyPrefix+session.Reference, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

// Take removes and returns the session in one step, so of two notifications
// for the same payment only one gets it. A missing session yields nil.
func (s *RedisCheckoutStore) Take(ctx context.Context, reference string) (*models.CheckoutSession, error) {
	data, err := s.client.GetDel(ctx, checkoutKeyPrefix+reference).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to take checkout session: %w", err)
	}

	var session models.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

func (s *RedisCheckoutStore) Drop(ctx context.Context, reference string) error {
	if err := s.client.Del(ctx, checkoutKeyPrefix+reference).Err(); err != nil {
		return fmt.Errorf("failed to drop checkout session: %w", err)
	}
	return nil
}
