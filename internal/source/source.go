// Package source supplies lazily-paginated question batches for a category.
package source

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"quiz-session-engine/internal/domain"
)

// PageLoader fetches one page of normalized questions for a category.
// Implementations exist for the HTTP question API, direct Postgres access,
// and a static in-memory bank for tests/demos.
type PageLoader interface {
	LoadPage(ctx context.Context, categoryID string, page, pageSize int) ([]domain.Question, error)
}

// Source buffers loaded questions for one category. Pages are appended
// without disturbing already-rendered state; questions are deduplicated by
// ID across pages. Concurrent prefetches of the same page collapse into one
// loader call.
type Source struct {
	loader     PageLoader
	categoryID string
	pageSize   int
	sf         singleflight.Group

	mu        sync.RWMutex
	questions []domain.Question
	seen      map[string]struct{}
	nextPage  int
	exhausted bool
}

func New(loader PageLoader, categoryID string, pageSize int) *Source {
	return &Source{
		loader:     loader,
		categoryID: categoryID,
		pageSize:   pageSize,
		seen:       make(map[string]struct{}),
		nextPage:   1,
	}
}

// LoadFirst fetches page one. An empty first page is the distinct
// "no content" condition, not a fetch failure.
func (s *Source) LoadFirst(ctx context.Context) error {
	questions, err := s.loadPage(ctx, 1)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: category %s", domain.ErrNoContent, s.categoryID)
	}
	s.append(1, questions)
	return nil
}

// LoadNext fetches the next unloaded page and appends it. No-op once the
// loader has signalled exhaustion (a short or empty page). A failed fetch
// leaves existing questions intact and the page eligible for retry.
func (s *Source) LoadNext(ctx context.Context) error {
	s.mu.RLock()
	page := s.nextPage
	exhausted := s.exhausted
	s.mu.RUnlock()
	if exhausted {
		return nil
	}

	_, err, _ := s.sf.Do(strconv.Itoa(page), func() (interface{}, error) {
		s.mu.RLock()
		current := s.nextPage
		done := s.exhausted
		s.mu.RUnlock()
		if done || current != page {
			return nil, nil
		}
		questions, err := s.loadPage(ctx, page)
		if err != nil {
			return nil, err
		}
		s.append(page, questions)
		return nil, nil
	})
	return err
}

// Question returns the question at index i, if loaded.
func (s *Source) Question(i int) (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[i], true
}

// Len reports how many questions are loaded.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}

// Exhausted reports whether the loader has signalled the final page.
func (s *Source) Exhausted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exhausted
}

// NearEnd reports whether index is within threshold questions of the end of
// the loaded buffer and more pages may exist. The session engine uses this
// to prefetch before the buffer runs dry.
func (s *Source) NearEnd(index, threshold int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.exhausted {
		return false
	}
	return len(s.questions)-index <= threshold
}

func (s *Source) loadPage(ctx context.Context, page int) ([]domain.Question, error) {
	questions, err := s.loader.LoadPage(ctx, s.categoryID, page, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", domain.ErrFetch, page, err)
	}
	return questions, nil
}

func (s *Source) append(page int, questions []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page != s.nextPage {
		return
	}
	for _, q := range questions {
		if _, dup := s.seen[q.ID]; dup {
			continue
		}
		s.seen[q.ID] = struct{}{}
		s.questions = append(s.questions, q)
	}
	s.nextPage++
	if len(questions) < s.pageSize {
		s.exhausted = true
	}
}
