package memory

import (
	"context"
	"fmt"
	"sync"

	"quiz-session-engine/internal/domain"
)

// Wallet keeps per-user coin balances in process. Debits below zero are
// refused with ErrInsufficientCoins.
type Wallet struct {
	mu       sync.Mutex
	balances map[string]int
}

func NewWallet() *Wallet {
	return &Wallet{balances: make(map[string]int)}
}

// Seed sets a user's starting balance.
func (w *Wallet) Seed(userID string, coins int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[userID] = coins
}

// SeedIfAbsent sets a starting balance only for users not seen before.
func (w *Wallet) SeedIfAbsent(userID string, coins int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.balances[userID]; !ok {
		w.balances[userID] = coins
	}
}

// Delta applies a signed coin movement for userID.
func (w *Wallet) Delta(_ context.Context, userID string, amount int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := w.balances[userID] + amount
	if next < 0 {
		return fmt.Errorf("%w: balance %d, requested %d", domain.ErrInsufficientCoins, w.balances[userID], amount)
	}
	w.balances[userID] = next
	return nil
}

// Balance reads a user's current coins.
func (w *Wallet) Balance(userID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[userID]
}
