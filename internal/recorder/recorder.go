// Package recorder persists answered questions to the external grading
// service. The session record is created lazily on the first answer and at
// most once per session instance; persistence failures never block local
// progress.
package recorder

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"quiz-session-engine/internal/domain"
)

// RecordService is the boundary to the grading/record backend.
type RecordService interface {
	CreateSession(ctx context.Context, categoryID string) (string, error)
	SaveResponse(ctx context.Context, resp Response) error
}

// Response is one persisted answer.
type Response struct {
	SessionRecordID string  `json:"sessionRecordId"`
	QuestionID      string  `json:"questionId"`
	UserAnswer      string  `json:"userAnswer"`
	IsCorrect       bool    `json:"isCorrect"`
	TimeSpent       float64 `json:"timeSpent"`
	Notes           string  `json:"notes,omitempty"`
}

// Recorder wraps a RecordService with the at-most-one-session-record
// guarantee. Rapid concurrent first answers collapse into a single
// CreateSession call via singleflight; the resulting ID is cached for the
// lifetime of the recorder.
type Recorder struct {
	service RecordService
	sf      singleflight.Group

	mu        sync.RWMutex
	sessionID string
}

func New(service RecordService) *Recorder {
	return &Recorder{service: service}
}

// EnsureSession returns the cached session record ID, creating the external
// record on first use only.
func (r *Recorder) EnsureSession(ctx context.Context, categoryID string) (string, error) {
	r.mu.RLock()
	cached := r.sessionID
	r.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	result, err, _ := r.sf.Do("session", func() (interface{}, error) {
		r.mu.RLock()
		cached := r.sessionID
		r.mu.RUnlock()
		if cached != "" {
			return cached, nil
		}

		id, err := r.service.CreateSession(ctx, categoryID)
		if err != nil {
			return "", err
		}
		r.mu.Lock()
		r.sessionID = id
		r.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: create session record: %v", domain.ErrPersist, err)
	}
	return result.(string), nil
}

// RecordAnswer persists one answered question, creating the session record
// first if needed. Errors are wrapped as ErrPersist; the caller treats them
// as a recoverable warning since local state stays authoritative.
func (r *Recorder) RecordAnswer(ctx context.Context, categoryID string, summary domain.AnswerSummary, questionID string) error {
	sessionID, err := r.EnsureSession(ctx, categoryID)
	if err != nil {
		return err
	}

	err = r.service.SaveResponse(ctx, Response{
		SessionRecordID: sessionID,
		QuestionID:      questionID,
		UserAnswer:      summary.UserAnswer,
		IsCorrect:       summary.IsCorrect,
		TimeSpent:       summary.TimeSpentSeconds,
		Notes:           summary.Explanation,
	})
	if err != nil {
		return fmt.Errorf("%w: question %s: %v", domain.ErrPersist, questionID, err)
	}
	return nil
}

// SessionID returns the cached record ID, empty until the first answer.
func (r *Recorder) SessionID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessionID
}
