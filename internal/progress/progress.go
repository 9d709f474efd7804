// Package progress aggregates per-question summaries into session statistics.
package progress

import "quiz-session-engine/internal/domain"

// Aggregate folds summaries into display statistics. Percentage and average
// time are zero for an empty input; division by zero is an explicit guarded
// boundary, never a NaN.
func Aggregate(summaries []domain.AnswerSummary) domain.SessionStats {
	stats := domain.SessionStats{Total: len(summaries)}
	if stats.Total == 0 {
		return stats
	}

	var totalTime float64
	for _, s := range summaries {
		if s.IsCorrect {
			stats.Correct++
		}
		totalTime += s.TimeSpentSeconds
	}

	stats.Percentage = float64(stats.Correct) / float64(stats.Total) * 100
	stats.AverageTimeSeconds = totalTime / float64(stats.Total)
	return stats
}
