// Package reward settles a completed session into a coin delta.
package reward

import "quiz-session-engine/internal/domain"

// Score tiers. A perfect run pays double.
const (
	perfectThreshold = 100.0
	passingThreshold = 70.0

	perfectCoins = 2
	passingCoins = 1
)

// Settle computes the coin award for a finished session from its summaries.
// Pure and idempotent; the caller guards against crediting twice.
func Settle(summaries []domain.AnswerSummary) domain.RewardOutcome {
	total := len(summaries)
	if total == 0 {
		return domain.RewardOutcome{CoinsAwarded: 0}
	}

	correct := 0
	for _, s := range summaries {
		if s.IsCorrect {
			correct++
		}
	}

	score := float64(correct) / float64(total) * 100
	switch {
	case score >= perfectThreshold:
		return domain.RewardOutcome{CoinsAwarded: perfectCoins}
	case score >= passingThreshold:
		return domain.RewardOutcome{CoinsAwarded: passingCoins}
	default:
		return domain.RewardOutcome{CoinsAwarded: 0}
	}
}
