package lib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"ticketbari/src/types"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// IntentCache remembers the payment intent issued for a booking so repeated
// "Pay Now" clicks reuse it instead of creating a new one.
type IntentCache struct {
	rd  *redis.Client
	ttl time.Duration
}

func NewIntentCache(rd *redis.Client, ttl time.Duration) *IntentCache {
	return &IntentCache{rd: rd, ttl: ttl}
}

func intentKey(bookingID uint) string {
	return fmt.Sprintf("booking::%d:payment_intent", bookingID)
}

// Get returns nil without error on a cache miss.
func (c *IntentCache) Get(ctx context.Context, bookingID uint) (*types.PaymentIntent, error) {
	val, err := c.rd.Get(ctx, intentKey(bookingID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pi types.PaymentIntent
	if err := json.Unmarshal([]byte(val), &pi); err != nil {
		return nil, err
	}
	return &pi, nil
}

func (c *IntentCache) Set(ctx context.Context, bookingID uint, pi *types.PaymentIntent) error {
	b, err := json.Marshal(pi)
	if err != nil {
		return err
	}
	return c.rd.SetEx(ctx, intentKey(bookingID), string(b), c.ttl).Err()
}

func (c *IntentCache) Delete(ctx context.Context, bookingID uint) error {
	return c.rd.Del(ctx, intentKey(bookingID)).Err()
}
