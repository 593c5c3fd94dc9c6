// utils/attempts.go
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrTooManyAttempts is returned once a counter exceeds its limit
var ErrTooManyAttempts = errors.New("too many attempts")

// CountAttempt increments the Redis counter at key. The counter expires
// window after the first attempt; more than max attempts inside the window
// return ErrTooManyAttempts.
func CountAttempt(ctx context.Context, client *redis.Client, key string, max int64, window time.Duration) error {
	attempts, err := client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	// Set expiry if first attempt
	if attempts == 1 {
		client.Expire(ctx, key, window)
	}

	if attempts > max {
		return ErrTooManyAttempts
	}
	return nil
}
