package domain

import "errors"

var (
	// ErrFetch indicates question retrieval failed; recoverable, existing
	// questions stay intact and the next navigation retries.
	ErrFetch = errors.New("question fetch failed")
	// ErrNoContent indicates a category has zero questions on page one.
	// Terminal empty state, not a fetch failure.
	ErrNoContent = errors.New("no questions available for category")
	// ErrPersist indicates an answer or session-record write failed.
	// Local state remains authoritative; surfaced as a warning.
	ErrPersist = errors.New("answer persistence failed")
	// ErrCoinDebit indicates the session-start payment failed; the session
	// stays in NotStarted and may be retried.
	ErrCoinDebit = errors.New("coin debit failed")
	// ErrInsufficientCoins is the wallet-side cause of a refused debit.
	ErrInsufficientCoins = errors.New("insufficient coin balance")
	// ErrMalformedOptions indicates an options payload could not be
	// normalized into a usable array.
	ErrMalformedOptions = errors.New("malformed question options")
	// ErrSessionNotStarted is returned when an operation requires an active session.
	ErrSessionNotStarted = errors.New("session not started")
	// ErrSessionComplete is returned when an operation arrives after completion.
	ErrSessionComplete = errors.New("session already complete")
)
