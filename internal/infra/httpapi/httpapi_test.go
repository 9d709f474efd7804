package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"quiz-session-engine/internal/recorder"
)

func TestQuestionClientParsesWirePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/questions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("category") != "cat-1" || q.Get("page") != "2" || q.Get("pageSize") != "10" {
			t.Fatalf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		// questionOptions double-encoded, questionAnswerNotes a plain array.
		w.Write([]byte(`{"questions":[{
			"id":"q1",
			"category":{"id":"cat-1","contentCategory":"math"},
			"questionContent":"What is 2+2?",
			"questionOptions":"[\"4\",\"3\",\"5\"]",
			"questionAnswerNotes":["basic addition"],
			"context":"counting passage"
		}]}`))
	}))
	defer server.Close()

	client := NewQuestionClient(server.URL, 5*time.Second)
	questions, err := client.LoadPage(context.Background(), "cat-1", 2, 10)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected one question, got %d", len(questions))
	}
	got := questions[0]
	if got.ID != "q1" || got.Category.ContentCategory != "math" {
		t.Fatalf("unexpected question: %+v", got)
	}
	if !reflect.DeepEqual(got.Options, []string{"4", "3", "5"}) {
		t.Fatalf("options not normalized: %v", got.Options)
	}
	if got.Explanation != "basic addition" || got.Passage != "counting passage" {
		t.Fatalf("notes/context not mapped: %+v", got)
	}
}

func TestQuestionClientDegradesMalformedOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"questions":[{"id":"q1","questionContent":"broken","questionOptions":"\"  \""}]}`))
	}))
	defer server.Close()

	client := NewQuestionClient(server.URL, 5*time.Second)
	questions, err := client.LoadPage(context.Background(), "cat-1", 1, 10)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	if len(questions) != 1 || len(questions[0].Options) != 0 {
		t.Fatalf("expected question with empty options, got %+v", questions)
	}
}

func TestQuestionClientSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewQuestionClient(server.URL, 5*time.Second)
	if _, err := client.LoadPage(context.Background(), "cat-1", 1, 10); err == nil {
		t.Fatalf("expected error for 502 response")
	}
}

func TestRecordClientRoundTrip(t *testing.T) {
	var (
		mu        sync.Mutex
		sessions  int
		responses []recorder.Response
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.URL.Path {
		case "/session":
			sessions++
			json.NewEncoder(w).Encode(map[string]string{"id": "rec-42"})
		case "/session/response":
			var resp recorder.Response
			if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			responses = append(responses, resp)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewRecordClient(server.URL, 5*time.Second)
	id, err := client.CreateSession(context.Background(), "cat-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if id != "rec-42" {
		t.Fatalf("unexpected id %s", id)
	}

	err = client.SaveResponse(context.Background(), recorder.Response{
		SessionRecordID: id,
		QuestionID:      "q1",
		UserAnswer:      "4",
		IsCorrect:       true,
		TimeSpent:       3.5,
	})
	if err != nil {
		t.Fatalf("save response: %v", err)
	}
	if sessions != 1 || len(responses) != 1 || responses[0].QuestionID != "q1" {
		t.Fatalf("unexpected server state: sessions=%d responses=%+v", sessions, responses)
	}
}
