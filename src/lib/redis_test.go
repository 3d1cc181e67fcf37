package lib

import (
	"context"
	"encoding/json"
	"testing"
	"ticketbari/src/types"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentCache(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	cache := NewIntentCache(db, 10*time.Minute)

	pi := &types.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x", AmountMinor: 110000, Currency: "bdt", BookingID: 3}
	raw, err := json.Marshal(pi)
	require.NoError(t, err)

	mock.ExpectGet("booking::3:payment_intent").RedisNil()
	got, err := cache.Get(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)

	mock.ExpectSetEx("booking::3:payment_intent", string(raw), 10*time.Minute).SetVal("OK")
	require.NoError(t, cache.Set(ctx, 3, pi))

	mock.ExpectGet("booking::3:payment_intent").SetVal(string(raw))
	got, err = cache.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, pi, got)

	mock.ExpectDel("booking::3:payment_intent").SetVal(1)
	require.NoError(t, cache.Delete(ctx, 3))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntentCacheError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewIntentCache(db, time.Minute)

	mock.ExpectGet("booking::9:payment_intent").SetErr(redis.ErrClosed)
	_, err := cache.Get(context.Background(), 9)
	assert.ErrorIs(t, err, redis.ErrClosed)
}

func TestNewRedisClient(t *testing.T) {
	db, _ := redismock.NewClientMock()
	NewRedisClient(db)
	t.Cleanup(func() { redisClient = nil })
	assert.Same(t, db, GetRedisClient())
}
