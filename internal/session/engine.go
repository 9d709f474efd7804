// Package session implements the quiz session state machine: it owns the
// current-question pointer, the answered set, summaries, completion
// detection, and the coin-economy side effects around a single attempt.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/progress"
	"quiz-session-engine/internal/recorder"
	"quiz-session-engine/internal/reward"
	"quiz-session-engine/internal/shuffle"
	"quiz-session-engine/internal/source"
	"quiz-session-engine/internal/timer"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateNotStarted State = iota
	StateActive
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return "notStarted"
	}
}

// CoinDelta moves coins for the session's user: negative on start (debit),
// positive on completion (credit). Injected so the engine never reaches for
// ambient balance state.
type CoinDelta func(ctx context.Context, amount int) error

// Config tunes one session.
type Config struct {
	Length            int // questions per attempt
	PageSize          int // questions per fetched page
	PrefetchThreshold int // request the next page this many questions before the buffer ends
	EntryCost         int // coins debited on start
}

// DefaultConfig matches the production session shape.
func DefaultConfig() Config {
	return Config{Length: 15, PageSize: 10, PrefetchThreshold: 3, EntryCost: 1}
}

// Deps are the engine's external collaborators.
type Deps struct {
	Loader  source.PageLoader
	Records recorder.RecordService
	Coins   CoinDelta
	// Notify receives a one-way push of the current question's canonical
	// text plus shuffled options on every question change. Optional.
	Notify func(domain.QuestionContext)
	// Rand seeds option shuffling; defaults to a time-seeded source.
	Rand *rand.Rand
	// Clock backs both timers; defaults to time.Now.
	Clock func() time.Time
}

// QuestionView is the render-facing snapshot of the current question.
type QuestionView struct {
	Number      int      `json:"number"`
	Total       int      `json:"total"`
	Content     string   `json:"content"`
	Passage     string   `json:"passage,omitempty"`
	Options     []string `json:"options"` // shuffled presentation, stable per question
	Answered    bool     `json:"answered"`
	UserAnswer  string   `json:"userAnswer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Engine is the session state machine. All state is guarded by one mutex so
// answer clicks, navigation, and fetch completions behave as atomic events
// even on a multi-threaded runtime.
type Engine struct {
	cfg        Config
	categoryID string
	loader     source.PageLoader
	records    recorder.RecordService
	coins      CoinDelta
	notify     func(domain.QuestionContext)
	rnd        *rand.Rand
	clock      func() time.Time

	mu              sync.Mutex
	state           State
	src             *source.Source
	rec             *recorder.Recorder
	current         int
	answered        map[string]struct{}
	answers         map[string]string
	summaries       []domain.AnswerSummary
	presentations   map[string][]string
	hasOpenedTiming bool
	rewardIssued    bool
	outcome         domain.RewardOutcome
	questionTimer   *timer.Timer
	sessionTimer    *timer.Timer
}

// New builds an engine in NotStarted for one category.
func New(cfg Config, categoryID string, deps Deps) *Engine {
	if cfg.Length <= 0 {
		cfg.Length = DefaultConfig().Length
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	if cfg.PrefetchThreshold <= 0 {
		cfg.PrefetchThreshold = DefaultConfig().PrefetchThreshold
	}
	rnd := deps.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	e := &Engine{
		cfg:        cfg,
		categoryID: categoryID,
		loader:     deps.Loader,
		records:    deps.Records,
		coins:      deps.Coins,
		notify:     deps.Notify,
		rnd:        rnd,
		clock:      clock,
	}
	e.clearLocked()
	return e
}

// Start performs the NotStarted -> Active transition: fetch the first page,
// then debit the entry cost. A fetch failure leaves the machine in
// NotStarted with nothing charged; a debit failure is ErrCoinDebit and the
// user may retry. Page one is loaded before money moves so an empty
// category never costs a coin.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateNotStarted {
		return nil
	}

	src := source.New(e.loader, e.categoryID, e.cfg.PageSize)
	if err := src.LoadFirst(ctx); err != nil {
		return err
	}

	if e.cfg.EntryCost > 0 && e.coins != nil {
		if err := e.coins(ctx, -e.cfg.EntryCost); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrCoinDebit, err)
		}
	}

	e.src = src
	e.rec = recorder.New(e.records)
	e.state = StateActive
	e.pushContextLocked()
	return nil
}

// SelectAnswer records the user's answer for the current question. Repeated
// submissions for an already-answered question are no-ops. Correctness is
// judged against the canonical option order, never the shuffled one. A
// returned ErrPersist is a warning: the local summary is already committed.
func (e *Engine) SelectAnswer(ctx context.Context, answer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateComplete {
		return domain.ErrSessionComplete
	}
	if e.state != StateActive {
		return domain.ErrSessionNotStarted
	}

	q, ok := e.src.Question(e.current)
	if !ok {
		return fmt.Errorf("%w: question %d not loaded", domain.ErrNoContent, e.current+1)
	}
	if _, done := e.answered[q.ID]; done {
		return nil
	}

	if !e.hasOpenedTiming {
		e.hasOpenedTiming = true
		e.questionTimer.Start()
		e.sessionTimer.Start()
	}

	summary := domain.AnswerSummary{
		QuestionNumber:   e.current + 1,
		QuestionContent:  q.Content,
		UserAnswer:       answer,
		CorrectAnswer:    q.CorrectAnswer(),
		IsCorrect:        answer == q.CorrectAnswer(),
		TimeSpentSeconds: e.questionTimer.Elapsed(),
		Explanation:      q.Explanation,
	}
	e.answered[q.ID] = struct{}{}
	e.answers[q.ID] = answer
	e.summaries = append(e.summaries, summary)

	// Remote persistence is best-effort; local state is the source of truth.
	if err := e.rec.RecordAnswer(ctx, e.categoryID, summary, q.ID); err != nil {
		return err
	}
	return nil
}

// Advance moves to the next question, or completes the session at the
// configured length or the final loaded question. Completion settles the
// reward exactly once; duplicate Advance events are harmless. A returned
// credit failure is a warning, not a rollback.
func (e *Engine) Advance(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateComplete {
		return nil
	}
	if e.state != StateActive {
		return domain.ErrSessionNotStarted
	}

	next := e.current + 1
	if next >= e.cfg.Length {
		return e.completeLocked(ctx)
	}
	if next >= e.src.Len() {
		if e.src.Exhausted() {
			// The category ran out short of the configured length.
			return e.completeLocked(ctx)
		}
		// The buffer ran dry before the prefetch landed; block on the
		// fetch rather than step out of range.
		if err := e.src.LoadNext(ctx); err != nil {
			return err
		}
		if next >= e.src.Len() {
			return e.completeLocked(ctx)
		}
	}

	e.current = next
	if e.hasOpenedTiming {
		e.questionTimer.Reset()
	}
	if e.src.NearEnd(e.current, e.cfg.PrefetchThreshold) {
		// Prefetch must never block or clear rendered questions; failures
		// surface on the navigation that actually needs the page.
		go func(src *source.Source) {
			_ = src.LoadNext(context.Background())
		}(e.src)
	}
	e.pushContextLocked()
	return nil
}

// Retreat steps back one question for review. Timers are untouched:
// revisiting neither penalizes nor rewards time.
func (e *Engine) Retreat() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return domain.ErrSessionNotStarted
	}
	if e.current == 0 {
		return nil
	}
	e.current--
	e.pushContextLocked()
	return nil
}

// Reset discards all session state and returns to NotStarted. A new attempt
// requires the coin confirmation again.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearLocked()
}

// CurrentState reports the lifecycle phase.
func (e *Engine) CurrentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Current returns the render snapshot for the question at the pointer. The
// shuffled order is computed once per question and reused on every
// redisplay, so a recorded answer letter never desynchronizes. ok is false
// when no question is available to render.
func (e *Engine) Current() (QuestionView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentViewLocked()
}

// Stats aggregates the summaries recorded so far.
func (e *Engine) Stats() domain.SessionStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return progress.Aggregate(e.summaries)
}

// Summaries returns a copy of the answer-order summary log.
func (e *Engine) Summaries() []domain.AnswerSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.AnswerSummary, len(e.summaries))
	copy(out, e.summaries)
	return out
}

// SummaryFor returns the summary recorded for question number n, if that
// question has been answered.
func (e *Engine) SummaryFor(n int) (domain.AnswerSummary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.summaries {
		if s.QuestionNumber == n {
			return s, true
		}
	}
	return domain.AnswerSummary{}, false
}

// Outcome reports the settled reward; ok is false before completion.
func (e *Engine) Outcome() (domain.RewardOutcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome, e.state == StateComplete
}

// SessionElapsed reports seconds since the first answer of the attempt.
func (e *Engine) SessionElapsed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionTimer.Elapsed()
}

// SessionRecordID exposes the lazily-created external record ID, empty
// until the first answer persists.
func (e *Engine) SessionRecordID() string {
	e.mu.Lock()
	rec := e.rec
	e.mu.Unlock()
	if rec == nil {
		return ""
	}
	return rec.SessionID()
}

func (e *Engine) completeLocked(ctx context.Context) error {
	e.state = StateComplete
	e.questionTimer.Pause()
	e.sessionTimer.Pause()
	if e.rewardIssued {
		return nil
	}
	e.rewardIssued = true
	e.outcome = reward.Settle(e.summaries)
	if e.outcome.CoinsAwarded > 0 && e.coins != nil {
		if err := e.coins(ctx, e.outcome.CoinsAwarded); err != nil {
			return fmt.Errorf("credit reward: %w", err)
		}
	}
	return nil
}

func (e *Engine) clearLocked() {
	e.state = StateNotStarted
	e.src = nil
	e.rec = nil
	e.current = 0
	e.answered = make(map[string]struct{})
	e.answers = make(map[string]string)
	e.summaries = nil
	e.presentations = make(map[string][]string)
	e.hasOpenedTiming = false
	e.rewardIssued = false
	e.outcome = domain.RewardOutcome{}
	e.questionTimer = timer.NewWithClock(e.clock)
	e.sessionTimer = timer.NewWithClock(e.clock)
}

func (e *Engine) currentViewLocked() (QuestionView, bool) {
	if e.src == nil {
		return QuestionView{}, false
	}
	q, ok := e.src.Question(e.current)
	if !ok {
		return QuestionView{}, false
	}
	_, answered := e.answered[q.ID]
	view := QuestionView{
		Number:     e.current + 1,
		Total:      e.cfg.Length,
		Content:    q.Content,
		Passage:    q.Passage,
		Options:    e.presentationLocked(q),
		Answered:   answered,
		UserAnswer: e.answers[q.ID],
	}
	if answered {
		view.Explanation = q.Explanation
	}
	return view, true
}

func (e *Engine) presentationLocked(q domain.Question) []string {
	if cached, ok := e.presentations[q.ID]; ok {
		return cached
	}
	shuffled := shuffle.Options(e.rnd, q.Options)
	e.presentations[q.ID] = shuffled
	return shuffled
}

func (e *Engine) pushContextLocked() {
	if e.notify == nil {
		return
	}
	q, ok := e.src.Question(e.current)
	if !ok {
		return
	}
	e.notify(domain.QuestionContext{
		QuestionNumber: e.current + 1,
		Content:        q.Content,
		Options:        e.presentationLocked(q),
		Explanation:    q.Explanation,
	})
}
