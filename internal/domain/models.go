package domain

// Category identifies a content category a session is played against.
type Category struct {
	ID              string `json:"id"`
	ContentCategory string `json:"contentCategory"`
}

// Question is an immutable question as returned by the question source.
// Options[0] is always the canonical correct answer; presentation order is a
// separate derived sequence and Options must never be reordered in place.
type Question struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Content     string   `json:"content"`
	Options     []string `json:"options"`
	Explanation string   `json:"explanation,omitempty"`
	Passage     string   `json:"passage,omitempty"`
}

// CorrectAnswer returns the canonical correct option text.
func (q Question) CorrectAnswer() string {
	if len(q.Options) == 0 {
		return ""
	}
	return q.Options[0]
}

// AnswerSummary is the immutable record of one answered question, appended in
// answer order and used for both persistence and on-screen review.
type AnswerSummary struct {
	QuestionNumber   int     `json:"questionNumber"`
	QuestionContent  string  `json:"questionContent"`
	UserAnswer       string  `json:"userAnswer"`
	CorrectAnswer    string  `json:"correctAnswer"`
	IsCorrect        bool    `json:"isCorrect"`
	TimeSpentSeconds float64 `json:"timeSpentSeconds"`
	Explanation      string  `json:"explanation,omitempty"`
}

// SessionStats aggregates summaries for display.
type SessionStats struct {
	Correct            int     `json:"correct"`
	Total              int     `json:"total"`
	Percentage         float64 `json:"percentage"`
	AverageTimeSeconds float64 `json:"averageTimeSeconds"`
}

// RewardOutcome is the result of settling a completed session.
type RewardOutcome struct {
	CoinsAwarded int `json:"coinsAwarded"`
}

// QuestionContext is the one-way push emitted on every question change for
// downstream tutoring/chat consumers. It carries the canonical content with
// the shuffled presentation order; nothing flows back into session state.
type QuestionContext struct {
	QuestionNumber int      `json:"questionNumber"`
	Content        string   `json:"content"`
	Options        []string `json:"options"`
	Explanation    string   `json:"explanation,omitempty"`
}
