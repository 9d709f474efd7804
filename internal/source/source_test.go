package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"quiz-session-engine/internal/domain"
)

// fakeLoader serves a fixed bank sliced into pages and counts calls.
type fakeLoader struct {
	mu    sync.Mutex
	bank  []domain.Question
	calls int
	fail  bool
	slow  time.Duration
}

func (l *fakeLoader) LoadPage(_ context.Context, _ string, page, pageSize int) ([]domain.Question, error) {
	if l.slow > 0 {
		time.Sleep(l.slow)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.fail {
		return nil, errors.New("boom")
	}
	start := (page - 1) * pageSize
	if start >= len(l.bank) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(l.bank) {
		end = len(l.bank)
	}
	return l.bank[start:end], nil
}

func questionBank(n int) []domain.Question {
	bank := make([]domain.Question, n)
	for i := range bank {
		bank[i] = domain.Question{
			ID:      fmt.Sprintf("q%d", i+1),
			Content: fmt.Sprintf("question %d", i+1),
			Options: []string{"right", "wrong1", "wrong2", "wrong3"},
		}
	}
	return bank
}

func TestLoadFirstEmptyCategoryIsNoContent(t *testing.T) {
	src := New(&fakeLoader{}, "cat-1", 10)
	err := src.LoadFirst(context.Background())
	if !errors.Is(err, domain.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestLoadFirstFetchFailure(t *testing.T) {
	src := New(&fakeLoader{fail: true}, "cat-1", 10)
	err := src.LoadFirst(context.Background())
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if src.Len() != 0 {
		t.Fatalf("expected no questions after failure, got %d", src.Len())
	}
}

func TestLoadNextAppendsWithoutDisturbingBuffer(t *testing.T) {
	src := New(&fakeLoader{bank: questionBank(15)}, "cat-1", 10)
	if err := src.LoadFirst(context.Background()); err != nil {
		t.Fatalf("load first: %v", err)
	}
	first, _ := src.Question(0)

	if err := src.LoadNext(context.Background()); err != nil {
		t.Fatalf("load next: %v", err)
	}
	if src.Len() != 15 {
		t.Fatalf("expected 15 questions, got %d", src.Len())
	}
	stillFirst, _ := src.Question(0)
	if stillFirst.ID != first.ID {
		t.Fatalf("existing questions disturbed by append")
	}
	// 15 of 15 loaded and page 2 was short, so the source is exhausted.
	if src.NearEnd(14, 3) {
		t.Fatalf("exhausted source must not request more pages")
	}
}

func TestLoadNextDeduplicatesAcrossPages(t *testing.T) {
	bank := questionBank(15)
	// Overlap: page 2 starts with a repeat of q10.
	bank[10] = bank[9]
	src := New(&fakeLoader{bank: bank}, "cat-1", 10)
	if err := src.LoadFirst(context.Background()); err != nil {
		t.Fatalf("load first: %v", err)
	}
	if err := src.LoadNext(context.Background()); err != nil {
		t.Fatalf("load next: %v", err)
	}
	if src.Len() != 14 {
		t.Fatalf("expected duplicate dropped, got %d questions", src.Len())
	}
}

func TestConcurrentPrefetchCollapsesToOneCall(t *testing.T) {
	loader := &fakeLoader{bank: questionBank(30)}
	src := New(loader, "cat-1", 10)
	if err := src.LoadFirst(context.Background()); err != nil {
		t.Fatalf("load first: %v", err)
	}
	before := loader.calls
	// Slow loads keep all goroutines in flight together so the
	// singleflight collapse is observable.
	loader.slow = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = src.LoadNext(context.Background())
		}()
	}
	wg.Wait()

	if loader.calls != before+1 {
		t.Fatalf("expected one page-2 load, got %d extra calls", loader.calls-before)
	}
	if src.Len() != 20 {
		t.Fatalf("expected 20 questions after prefetch, got %d", src.Len())
	}
}

func TestNearEndTriggersThreeBeforeBoundary(t *testing.T) {
	src := New(&fakeLoader{bank: questionBank(30)}, "cat-1", 10)
	if err := src.LoadFirst(context.Background()); err != nil {
		t.Fatalf("load first: %v", err)
	}
	// With 10 loaded, index 7 is 3 from the end: prefetch time.
	if src.NearEnd(6, 3) {
		t.Fatalf("index 6 should not trigger prefetch yet")
	}
	if !src.NearEnd(7, 3) {
		t.Fatalf("index 7 must trigger prefetch")
	}
}

func TestFailedNextLeavesStateRetryable(t *testing.T) {
	loader := &fakeLoader{bank: questionBank(30)}
	src := New(loader, "cat-1", 10)
	if err := src.LoadFirst(context.Background()); err != nil {
		t.Fatalf("load first: %v", err)
	}

	loader.fail = true
	if err := src.LoadNext(context.Background()); !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if src.Len() != 10 {
		t.Fatalf("failed fetch must not corrupt buffer, got %d", src.Len())
	}

	loader.fail = false
	if err := src.LoadNext(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if src.Len() != 20 {
		t.Fatalf("expected retry to load page 2, got %d", src.Len())
	}
}
