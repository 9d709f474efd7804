package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiz-session-engine/internal/domain"
)

// debitScript applies a signed delta only if the balance stays non-negative.
var debitScript = redis.NewScript(`
local balance = tonumber(redis.call('GET', KEYS[1]) or '0')
local delta = tonumber(ARGV[1])
if balance + delta < 0 then
  return -1
end
return redis.call('INCRBY', KEYS[1], delta)
`)

// Wallet stores per-user coin balances in Redis under coins:{userID}.
type Wallet struct {
	client *redis.Client
}

func NewWallet(client *redis.Client) *Wallet {
	return &Wallet{client: client}
}

// Delta applies a signed coin movement atomically. Debits that would take
// the balance below zero fail with ErrInsufficientCoins.
func (w *Wallet) Delta(ctx context.Context, userID string, amount int) error {
	result, err := debitScript.Run(ctx, w.client, []string{w.key(userID)}, amount).Int64()
	if err != nil {
		return fmt.Errorf("wallet delta: %w", err)
	}
	if result < 0 {
		return fmt.Errorf("%w: requested %d", domain.ErrInsufficientCoins, amount)
	}
	return nil
}

// Balance reads the current coin count; a missing key is zero.
func (w *Wallet) Balance(ctx context.Context, userID string) (int, error) {
	val, err := w.client.Get(ctx, w.key(userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("wallet balance: %w", err)
	}
	return val, nil
}

// Seed sets a user's balance, for provisioning and tests.
func (w *Wallet) Seed(ctx context.Context, userID string, coins int) error {
	return w.client.Set(ctx, w.key(userID), coins, 0).Err()
}

func (w *Wallet) key(userID string) string {
	return "coins:" + userID
}
