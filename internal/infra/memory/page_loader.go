// Package memory provides in-process implementations of the engine's
// infrastructure boundaries, used in tests and standalone demo mode.
package memory

import (
	"context"

	"quiz-session-engine/internal/domain"
)

// StaticPageLoader serves pages from a fixed per-category question bank.
type StaticPageLoader struct {
	banks map[string][]domain.Question
}

func NewStaticPageLoader(banks map[string][]domain.Question) *StaticPageLoader {
	return &StaticPageLoader{banks: banks}
}

func (l *StaticPageLoader) LoadPage(_ context.Context, categoryID string, page, pageSize int) ([]domain.Question, error) {
	bank := l.banks[categoryID]
	start := (page - 1) * pageSize
	if start >= len(bank) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(bank) {
		end = len(bank)
	}
	return bank[start:end], nil
}
