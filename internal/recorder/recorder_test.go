package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"quiz-session-engine/internal/domain"
)

type fakeService struct {
	mu          sync.Mutex
	creates     int
	saves       []Response
	createDelay time.Duration
	createErr   error
	saveErr     error
}

func (s *fakeService) CreateSession(_ context.Context, categoryID string) (string, error) {
	if s.createDelay > 0 {
		time.Sleep(s.createDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return "", s.createErr
	}
	return fmt.Sprintf("rec-%s-%d", categoryID, s.creates), nil
}

func (s *fakeService) SaveResponse(_ context.Context, resp Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, resp)
	return nil
}

func TestEnsureSessionCreatesOnce(t *testing.T) {
	svc := &fakeService{}
	rec := New(svc)

	id1, err := rec.EnsureSession(context.Background(), "cat-1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	id2, err := rec.EnsureSession(context.Background(), "cat-1")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected cached id, got %s then %s", id1, id2)
	}
	if svc.creates != 1 {
		t.Fatalf("expected one create, got %d", svc.creates)
	}
}

func TestConcurrentFirstAnswersCreateOneRecord(t *testing.T) {
	svc := &fakeService{createDelay: 50 * time.Millisecond}
	rec := New(svc)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rec.RecordAnswer(context.Background(), "cat-1", domain.AnswerSummary{
				QuestionNumber: 1,
				UserAnswer:     "A",
			}, fmt.Sprintf("q%d", i))
		}()
	}
	wg.Wait()

	if svc.creates != 1 {
		t.Fatalf("expected exactly one session record, got %d", svc.creates)
	}
	if len(svc.saves) != 10 {
		t.Fatalf("expected 10 saved responses, got %d", len(svc.saves))
	}
}

func TestCreateFailureIsPersistError(t *testing.T) {
	svc := &fakeService{createErr: errors.New("503")}
	rec := New(svc)

	err := rec.RecordAnswer(context.Background(), "cat-1", domain.AnswerSummary{}, "q1")
	if !errors.Is(err, domain.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if rec.SessionID() != "" {
		t.Fatalf("failed create must not cache an id")
	}

	// A later attempt may retry the create.
	svc.createErr = nil
	if err := rec.RecordAnswer(context.Background(), "cat-1", domain.AnswerSummary{}, "q2"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if svc.creates != 2 {
		t.Fatalf("expected retried create, got %d calls", svc.creates)
	}
}

func TestSaveFailureIsPersistError(t *testing.T) {
	svc := &fakeService{saveErr: errors.New("timeout")}
	rec := New(svc)

	err := rec.RecordAnswer(context.Background(), "cat-1", domain.AnswerSummary{UserAnswer: "B"}, "q1")
	if !errors.Is(err, domain.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	// The session record itself was created and stays cached.
	if rec.SessionID() == "" {
		t.Fatalf("expected cached session id after save failure")
	}
}
