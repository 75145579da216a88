package queue

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisBackend struct {
	client *redis.Client
}

func (b redisBackend) push(ctx context.Context, key string, data []byte) error {
	return b.client.LPush(ctx, key, data).Err()
}

func (b redisBackend) pop(ctx context.Context, key string, timeout time.Duration) ([]byte, error) {
	result, err := b.client.BRPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

func (b redisBackend) schedule(ctx context.Context, key string, data []byte, at time.Time) error {
	return b.client.ZAdd(ctx, key, redis.Z{Score: float64(at.Unix()), Member: data}).Err()
}

func (b redisBackend) promote(ctx context.Context, from, to string, now time.Time) (int, error) {
	due, err := b.client.ZRangeByScore(ctx, from, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, member := range due {
		pipe := b.client.TxPipeline()
		pipe.ZRem(ctx, from, member)
		pipe.LPush(ctx, to, member)
		if _, err := pipe.Exec(ctx); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func (b redisBackend) ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b redisBackend) addr() string {
	return b.client.Options().Addr
}
