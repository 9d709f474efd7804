package shuffle

import (
	"math/rand"
	"testing"
)

func TestOptionsIsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	original := []string{"alpha", "beta", "gamma", "delta"}

	shuffled := Options(rnd, original)
	if len(shuffled) != len(original) {
		t.Fatalf("expected %d options, got %d", len(original), len(shuffled))
	}

	seen := make(map[string]int)
	for _, opt := range shuffled {
		seen[opt]++
	}
	for _, opt := range original {
		if seen[opt] != 1 {
			t.Fatalf("option %q appears %d times in shuffle", opt, seen[opt])
		}
	}
}

func TestOptionsDoesNotMutateInput(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	original := []string{"correct", "wrong1", "wrong2", "wrong3"}

	for i := 0; i < 50; i++ {
		_ = Options(rnd, original)
	}
	if original[0] != "correct" || original[3] != "wrong3" {
		t.Fatalf("input mutated: %v", original)
	}
}

func TestCorrectOptionSurvivesShuffle(t *testing.T) {
	rnd := rand.New(rand.NewSource(99))
	original := []string{"correct", "a", "b", "c"}

	// Whatever position "correct" lands in, it must still be findable, so a
	// recorded answer compared against the canonical index 0 stays valid.
	for i := 0; i < 100; i++ {
		shuffled := Options(rnd, original)
		found := false
		for _, opt := range shuffled {
			if opt == original[0] {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("correct option lost in shuffle: %v", shuffled)
		}
	}
}

func TestEmptyAndSingleOption(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	if got := Options(rnd, nil); len(got) != 0 {
		t.Fatalf("expected empty shuffle, got %v", got)
	}
	if got := Options(rnd, []string{"only"}); len(got) != 1 || got[0] != "only" {
		t.Fatalf("expected single option unchanged, got %v", got)
	}
}
