package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// payment:verified:{payment_id} -> remote order id
	keyVerifiedPayment = "payment:verified:%s"

	ttlVerifiedPayment = 48 * time.Hour
)

func New(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return rdb, nil
}

func verifiedPaymentKey(paymentID string) string {
	return fmt.Sprintf(keyVerifiedPayment, paymentID)
}

// ReplayGuard remembers verified payment ids for a limited time.
type ReplayGuard struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewReplayGuard(rdb redis.Cmdable) *ReplayGuard {
	return &ReplayGuard{rdb: rdb, ttl: ttlVerifiedPayment}
}

// Lookup returns the remote order a payment id settled, or an empty string
// when the payment has not been seen.
func (g *ReplayGuard) Lookup(ctx context.Context, paymentID string) (string, error) {
	remoteOrderID, err := g.rdb.Get(ctx, verifiedPaymentKey(paymentID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("checking payment %s: %w", paymentID, err)
	}

	return remoteOrderID, nil
}

func (g *ReplayGuard) Remember(ctx context.Context, paymentID, remoteOrderID string) error {
	if err := g.rdb.SetNX(ctx, verifiedPaymentKey(paymentID), remoteOrderID, g.ttl).Err(); err != nil {
		return fmt.Errorf("remembering payment %s: %w", paymentID, err)
	}

	return nil
}
