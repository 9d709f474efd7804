// Package httpapi implements the engine's external service boundaries over
// HTTP: the question API and the grading/record API.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/source"
)

// QuestionClient fetches question pages from the content service.
type QuestionClient struct {
	baseURL string
	client  *http.Client
}

func NewQuestionClient(baseURL string, timeout time.Duration) *QuestionClient {
	return &QuestionClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// rawQuestion mirrors the wire payload. questionOptions may be a real JSON
// array, a singly- or doubly-encoded string of one, or bracket/quote soup;
// questionAnswerNotes is a JSON array with the explanation first.
type rawQuestion struct {
	ID       string `json:"id"`
	Category struct {
		ID              string `json:"id"`
		ContentCategory string `json:"contentCategory"`
	} `json:"category"`
	QuestionContent     string          `json:"questionContent"`
	QuestionOptions     json.RawMessage `json:"questionOptions"`
	QuestionAnswerNotes json.RawMessage `json:"questionAnswerNotes"`
	Context             string          `json:"context"`
}

type questionsResponse struct {
	Questions []rawQuestion `json:"questions"`
}

func (c *QuestionClient) LoadPage(ctx context.Context, categoryID string, page, pageSize int) ([]domain.Question, error) {
	endpoint := c.baseURL + "/questions?" + url.Values{
		"category": {categoryID},
		"page":     {strconv.Itoa(page)},
		"pageSize": {strconv.Itoa(pageSize)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("question api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload questionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	questions := make([]domain.Question, 0, len(payload.Questions))
	for _, raw := range payload.Questions {
		q := domain.Question{
			ID: raw.ID,
			Category: domain.Category{
				ID:              raw.Category.ID,
				ContentCategory: raw.Category.ContentCategory,
			},
			Content:     raw.QuestionContent,
			Explanation: source.NormalizeNotes(raw.QuestionAnswerNotes),
			Passage:     raw.Context,
		}
		// A question whose options cannot be recovered renders with an
		// empty option list instead of failing the whole page.
		if options, err := source.NormalizeOptions(raw.QuestionOptions); err == nil {
			q.Options = options
		}
		questions = append(questions, q)
	}
	return questions, nil
}
