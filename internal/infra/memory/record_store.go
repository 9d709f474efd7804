package memory

import (
	"context"
	"fmt"
	"sync"

	"quiz-session-engine/internal/recorder"
)

// RecordStore keeps session records and responses in process, standing in
// for the grading service in demo mode and tests.
type RecordStore struct {
	mu        sync.Mutex
	nextID    int
	responses map[string][]recorder.Response
}

func NewRecordStore() *RecordStore {
	return &RecordStore{responses: make(map[string][]recorder.Response)}
}

func (s *RecordStore) CreateSession(_ context.Context, categoryID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("local-%s-%d", categoryID, s.nextID)
	s.responses[id] = nil
	return id, nil
}

func (s *RecordStore) SaveResponse(_ context.Context, resp recorder.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[resp.SessionRecordID] = append(s.responses[resp.SessionRecordID], resp)
	return nil
}

// Responses returns the saved responses for a session record.
func (s *RecordStore) Responses(sessionRecordID string) []recorder.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recorder.Response, len(s.responses[sessionRecordID]))
	copy(out, s.responses[sessionRecordID])
	return out
}
