package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/HSouheill/matrix_backend/utils"
)

const (
	maxPinAttempts    = 5
	pinAttemptsWindow = time.Hour
)

// AttemptLimiter throttles PIN guessing per member
type AttemptLimiter interface {
	Allow(ctx context.Context, memberID string) error
}

type redisAttemptLimiter struct {
	client *redis.Client
}

// NewPinAttemptLimiter allows 5 activation attempts per member per hour. It
// does not limit anything when client is nil.
func NewPinAttemptLimiter(client *redis.Client) AttemptLimiter {
	if client == nil {
		return noopLimiter{}
	}
	return &redisAttemptLimiter{client: client}
}

func (l *redisAttemptLimiter) Allow(ctx context.Context, memberID string) error {
	err := utils.CountAttempt(ctx, l.client, "pin_attempts:"+memberID, maxPinAttempts, pinAttemptsWindow)
	if errors.Is(err, utils.ErrTooManyAttempts) {
		return ErrTooManyPinAttempts
	}
	if err != nil {
		// Redis trouble should not lock members out
		log.Printf("pin attempt counter for %s: %v", memberID, err)
	}
	return nil
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) error { return nil }
